package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, h *Hub, uid string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.ServeWS(w, r, uid)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// the server side registers after the handshake returns to the client
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		n := len(h.byUser[uid])
		h.mu.RUnlock()
		if n > 0 {
			return conn
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("connection never registered")
	return nil
}

func TestHubNotifyDelivers(t *testing.T) {
	h := NewHub(zerolog.Nop())
	client := dialTestHub(t, h, "user-a")

	ev := NewEvent(EventMessageNew, "user-a", "client-1", map[string]interface{}{"preview": "hi"})
	require.NoError(t, h.Notify(context.Background(), "user-a", ev))

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := client.ReadMessage()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, EventMessageNew, got.Type)
	assert.Equal(t, "client-1", got.ThreadID)
}

func TestHubNotifyNoConnection(t *testing.T) {
	h := NewHub(zerolog.Nop())
	err := h.Notify(context.Background(), "nobody", NewEvent(EventMessageNew, "nobody", "client-1", nil))
	assert.ErrorIs(t, err, ErrNoConnection)
}

// Notify snapshots the recipient's connections before sending, so a connection
// may close between the snapshot and the send. That interleave must degrade to
// a dropped delivery, never a panic on the closed channel.
func TestHubNotifySurvivesConcurrentClose(t *testing.T) {
	h := NewHub(zerolog.Nop())
	dialTestHub(t, h, "user-a")

	h.mu.RLock()
	var c *wsConn
	for conn := range h.byUser["user-a"] {
		c = conn
	}
	h.mu.RUnlock()
	require.NotNil(t, c)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = h.Notify(context.Background(), "user-a", NewEvent(EventMessageNew, "user-a", "client-1", nil))
		}
	}()
	c.close()
	wg.Wait()

	err := h.Notify(context.Background(), "user-a", NewEvent(EventMessageNew, "user-a", "client-1", nil))
	assert.ErrorIs(t, err, ErrNoConnection)
}
