package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Source string

const (
	SourceClient  Source = "client"
	SourceBreeder Source = "breeder"
)

// ThreadRef identifies a thread across both stores. The wire form is
// source-prefixed ("client-123", "breeder-456"); a bare numeric id defaults to
// the client source.
type ThreadRef struct {
	Source Source
	ID     uint64
}

func (r ThreadRef) String() string {
	return fmt.Sprintf("%s-%d", r.Source, r.ID)
}

func ParseThreadRef(s string) (ThreadRef, error) {
	src := SourceClient
	num := s
	if i := strings.IndexByte(s, '-'); i >= 0 {
		switch Source(s[:i]) {
		case SourceClient:
			src = SourceClient
		case SourceBreeder:
			src = SourceBreeder
		default:
			return ThreadRef{}, fmt.Errorf("%w: unknown thread source %q", ErrValidation, s[:i])
		}
		num = s[i+1:]
	}
	id, err := strconv.ParseUint(num, 10, 64)
	if err != nil || id == 0 {
		return ThreadRef{}, fmt.Errorf("%w: invalid thread id %q", ErrValidation, s)
	}
	return ThreadRef{Source: src, ID: id}, nil
}

// Counterparty is the display identity of the other side of a thread: the
// marketplace client for client threads, the breeder organization (or the
// other participant's party when the tenant has no primary organization) for
// breeder threads. Verified is only ever true for organizations.
type Counterparty struct {
	UID      string `json:"uid,omitempty"`
	PartyID  uint64 `json:"partyId,omitempty"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

// MessageSummary is the last-message preview on a thread row.
type MessageSummary struct {
	ID        uint64    `json:"id"`
	Body      string    `json:"body"`
	SenderUID string    `json:"senderUid,omitempty"`
	FromMe    bool      `json:"fromMe"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationThread is the read-time projection the facade exposes. It is
// never persisted; each listing rebuilds it from whichever store owns it.
type ConversationThread struct {
	ID            string          `json:"id"`
	Source        Source          `json:"source"`
	Subject       string          `json:"subject"`
	ThreadType    string          `json:"threadType"`
	LastMessageAt *time.Time      `json:"lastMessageAt"`
	UnreadCount   int64           `json:"unreadCount"`
	LastMessage   *MessageSummary `json:"lastMessage,omitempty"`
	Counterparty  Counterparty    `json:"counterpartyInfo"`
	ArchivedAt    *time.Time      `json:"archivedAt,omitempty"`
}

// ThreadMessage is the cross-source message shape returned by the detail and
// send endpoints.
type ThreadMessage struct {
	ID        uint64     `json:"id"`
	ThreadID  string     `json:"threadId"`
	FromMe    bool       `json:"fromMe"`
	SenderUID string     `json:"senderUid,omitempty"`
	PartyID   uint64     `json:"senderPartyId,omitempty"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// ThreadFilters are the query-string filters on the merged listing.
type ThreadFilters struct {
	Status   string
	Type     string // inquiry | transaction | ""
	Archived string // false (default) | true | all
	Source   string // client | breeder | all (default)
	Page     int
	Limit    int
}

func (f *ThreadFilters) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Source == "" {
		f.Source = "all"
	}
}

// ThreadPage is one window of the merged listing.
type ThreadPage struct {
	Threads []ConversationThread `json:"threads"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	Limit   int                  `json:"limit"`
}
