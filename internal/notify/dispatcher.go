package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher decouples request handlers from the Notifier: Dispatch enqueues
// without blocking and a single worker drains the queue. When the queue is
// full the event is dropped and logged; losing a realtime hint is preferable
// to stalling a send.
type Dispatcher struct {
	target Notifier
	ch     chan Event
	log    zerolog.Logger

	once sync.Once
	done chan struct{}
}

func NewDispatcher(target Notifier, buffer int, log zerolog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		target: target,
		ch:     make(chan Event, buffer),
		log:    log,
		done:   make(chan struct{}),
	}
}

// Start launches the worker. Safe to call once; subsequent calls are no-ops.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		go d.run()
	})
}

func (d *Dispatcher) run() {
	for ev := range d.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.target.Notify(ctx, ev.RecipientUID, ev); err != nil {
			d.log.Warn().
				Err(err).
				Str("event_id", ev.ID).
				Str("event_type", ev.Type).
				Str("recipient", ev.RecipientUID).
				Msg("notify delivery failed")
		}
		cancel()
	}
	close(d.done)
}

// Dispatch never blocks and never reports failure to the caller.
func (d *Dispatcher) Dispatch(ev Event) {
	if ev.RecipientUID == "" {
		return
	}
	select {
	case d.ch <- ev:
	default:
		d.log.Warn().
			Str("event_id", ev.ID).
			Str("event_type", ev.Type).
			Msg("notify queue full, dropping event")
	}
}

// Close drains and stops the worker, starting it first so closing a
// dispatcher that was never started still drains instead of blocking forever.
func (d *Dispatcher) Close() {
	d.Start()
	close(d.ch)
	<-d.done
}
