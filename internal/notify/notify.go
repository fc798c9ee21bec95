package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventMessageNew  = "message.new"
	EventUnreadDelta = "unread.delta"
)

// Event is one realtime fan-out unit. Delivery is best-effort end to end; no
// part of the send path waits on it or fails because of it.
type Event struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	RecipientUID string                 `json:"-"`
	ThreadID     string                 `json:"threadId,omitempty"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

func NewEvent(typ, recipientUID, threadID string, payload map[string]interface{}) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         typ,
		RecipientUID: recipientUID,
		ThreadID:     threadID,
		Payload:      payload,
		CreatedAt:    time.Now().UTC(),
	}
}

// Notifier delivers an event to one recipient. Implementations own their own
// retries and timeouts.
type Notifier interface {
	Notify(ctx context.Context, recipientUID string, ev Event) error
}
