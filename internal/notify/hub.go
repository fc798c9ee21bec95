package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var ErrNoConnection = errors.New("recipient has no active connection")

// Hub is the websocket Notifier: a registry of live connections keyed by user
// uid. A user may hold several connections (tabs, devices); fan-out goes to
// all of them and a slow consumer gets disconnected rather than backing up
// the hub.
type Hub struct {
	mu       sync.RWMutex
	byUser   map[string]map[*wsConn]bool
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		byUser: make(map[string]map[*wsConn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Notify implements Notifier. A recipient with no open connection is not an
// error worth surfacing upstream beyond the dispatcher's log line.
func (h *Hub) Notify(_ context.Context, recipientUID string, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.mu.RLock()
	conns := make([]*wsConn, 0, len(h.byUser[recipientUID]))
	for c := range h.byUser[recipientUID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return ErrNoConnection
	}
	for _, c := range conns {
		// trySend fails on a closed connection or a full buffer; a consumer
		// that cannot keep up gets disconnected rather than backing up the hub.
		if !c.trySend(b) {
			go c.close()
		}
	}
	return nil
}

// ServeWS upgrades the request and parks the connection in the registry until
// either pump exits.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, uid string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newWSConn(h, uid, conn)
	h.join(c)
	go c.writePump()
	go c.readPump()
	return nil
}

func (h *Hub) join(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.byUser[c.uid] == nil {
		h.byUser[c.uid] = make(map[*wsConn]bool)
	}
	h.byUser[c.uid][c] = true
}

func (h *Hub) leave(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byUser[c.uid]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byUser, c.uid)
		}
	}
}
