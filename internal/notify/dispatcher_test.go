package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	mu   sync.Mutex
	seen []Event
	fail bool
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, ev Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, ev)
	if n.fail {
		return errors.New("connection gone")
	}
	return nil
}

func (n *recordingNotifier) events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Event, len(n.seen))
	copy(out, n.seen)
	return out
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	target := &recordingNotifier{}
	d := NewDispatcher(target, 8, zerolog.Nop())
	d.Start()

	d.Dispatch(NewEvent(EventMessageNew, "user-a", "client-1", map[string]interface{}{"messageId": uint64(1)}))
	d.Dispatch(NewEvent(EventUnreadDelta, "user-a", "client-1", map[string]interface{}{"delta": 1}))
	d.Dispatch(NewEvent(EventMessageNew, "user-b", "breeder-5", nil))
	d.Close()

	got := target.events()
	if assert.Len(t, got, 3) {
		assert.Equal(t, EventMessageNew, got[0].Type)
		assert.Equal(t, EventUnreadDelta, got[1].Type)
		assert.Equal(t, "user-b", got[2].RecipientUID)
	}
}

func TestDispatcherSwallowsNotifierErrors(t *testing.T) {
	target := &recordingNotifier{fail: true}
	d := NewDispatcher(target, 8, zerolog.Nop())
	d.Start()

	d.Dispatch(NewEvent(EventMessageNew, "user-a", "client-1", nil))
	d.Dispatch(NewEvent(EventMessageNew, "user-a", "client-1", nil))
	d.Close()

	assert.Len(t, target.events(), 2)
}

func TestDispatcherIgnoresEmptyRecipient(t *testing.T) {
	target := &recordingNotifier{}
	d := NewDispatcher(target, 8, zerolog.Nop())
	d.Start()

	d.Dispatch(NewEvent(EventMessageNew, "", "client-1", nil))
	d.Close()

	assert.Empty(t, target.events())
}

func TestDispatcherCloseWithoutStart(t *testing.T) {
	target := &recordingNotifier{}
	d := NewDispatcher(target, 4, zerolog.Nop())

	d.Dispatch(NewEvent(EventMessageNew, "user-a", "client-1", nil))
	d.Close()

	assert.Len(t, target.events(), 1)
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	target := &recordingNotifier{}
	d := NewDispatcher(target, 1, zerolog.Nop())

	// worker not started yet, so the second event finds the queue full and must
	// return immediately instead of blocking
	d.Dispatch(NewEvent(EventMessageNew, "user-a", "client-1", nil))
	d.Dispatch(NewEvent(EventMessageNew, "user-a", "client-1", nil))

	d.Start()
	d.Close()

	assert.Len(t, target.events(), 1)
}
