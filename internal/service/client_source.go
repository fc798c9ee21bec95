package service

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/denhaven/breeder-backend/internal/model"
	"github.com/denhaven/breeder-backend/internal/repository"
	"gorm.io/gorm"
)

// clientSource normalizes the direct buyer<->provider store into the facade's
// projection. Ownership is a plain provider_id column, ordering is native to
// the store, and read state is per-message.
type clientSource struct {
	threads repository.ClientThreadRepository
}

func newClientSource(threads repository.ClientThreadRepository) *clientSource {
	return &clientSource{threads: threads}
}

func (s *clientSource) List(ctx context.Context, pc ProviderContext, f ThreadFilters) ([]ConversationThread, int64, error) {
	rf := repository.ClientThreadFilter{
		Status:   f.Status,
		Type:     f.Type,
		Archived: f.Archived,
	}
	rows, total, err := s.threads.ListByProvider(ctx, pc.ProviderID, rf)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint64, 0, len(rows))
	for _, t := range rows {
		ids = append(ids, t.ID)
	}
	unread, err := s.threads.UnreadCounts(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	last, err := s.threads.LastMessages(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ConversationThread, 0, len(rows))
	for _, t := range rows {
		var summary *model.ClientMessage
		if m, ok := last[t.ID]; ok {
			summary = &m
		}
		out = append(out, s.project(t, unread[t.ID], summary))
	}
	return out, total, nil
}

func (s *clientSource) Find(ctx context.Context, pc ProviderContext, id uint64) (*model.ClientThread, error) {
	t, err := s.threads.FindByID(ctx, id, pc.ProviderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *clientSource) Get(ctx context.Context, pc ProviderContext, id uint64) (*ConversationThread, []ThreadMessage, error) {
	t, err := s.Find(ctx, pc, id)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.threads.ListMessages(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	var summary *model.ClientMessage
	if len(msgs) > 0 {
		summary = &msgs[len(msgs)-1]
	}
	proj := s.project(*t, ClientUnreadCount(msgs), summary)
	out := make([]ThreadMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, clientThreadMessage(m))
	}
	return &proj, out, nil
}

// Append writes the provider's reply and stamps the thread in one transaction.
// A first reply to an existing first client message also records the response
// time used by the quick-responder badge.
func (s *clientSource) Append(ctx context.Context, pc ProviderContext, t *model.ClientThread, text string) (*ThreadMessage, error) {
	now := time.Now().UTC()
	msg := &model.ClientMessage{
		ThreadID:   t.ID,
		SenderUID:  pc.UID,
		SenderType: model.SenderTypeProvider,
		Body:       text,
		CreatedAt:  now,
	}
	stamp := repository.ThreadStamp{LastMessageAt: now}
	if t.FirstClientMessageAt != nil && t.FirstProviderReplyAt == nil {
		reply := now
		secs := int64(now.Sub(*t.FirstClientMessageAt) / time.Second)
		stamp.FirstProviderReplyAt = &reply
		stamp.ResponseTimeSeconds = &secs
	}
	if err := s.threads.CreateMessage(ctx, msg, stamp); err != nil {
		return nil, err
	}
	tm := clientThreadMessage(*msg)
	return &tm, nil
}

// CreateInquiry opens a thread on the client's first message, stamping
// firstClientMessageAt so the provider's eventual reply can be timed.
func (s *clientSource) CreateInquiry(ctx context.Context, clientUID string, providerID uint64, listingID *uint64, subject, text string) (*model.ClientThread, *ThreadMessage, error) {
	now := time.Now().UTC()
	if subject == "" {
		subject = "New inquiry"
	}
	t := &model.ClientThread{
		ClientUID:  clientUID,
		ProviderID: providerID,
		ListingID:  listingID,
		Subject:    subject,
		Status:     model.ClientThreadStatusActive,
	}
	if err := s.threads.Create(ctx, t); err != nil {
		return nil, nil, err
	}
	msg := &model.ClientMessage{
		ThreadID:   t.ID,
		SenderUID:  clientUID,
		SenderType: model.SenderTypeClient,
		Body:       text,
		CreatedAt:  now,
	}
	first := now
	stamp := repository.ThreadStamp{LastMessageAt: now, FirstClientMessageAt: &first}
	if err := s.threads.CreateMessage(ctx, msg, stamp); err != nil {
		return nil, nil, err
	}
	tm := clientThreadMessage(*msg)
	return t, &tm, nil
}

func (s *clientSource) MarkRead(ctx context.Context, pc ProviderContext, id uint64) error {
	if _, err := s.Find(ctx, pc, id); err != nil {
		return err
	}
	return s.threads.MarkMessagesRead(ctx, id, time.Now().UTC())
}

func (s *clientSource) SetArchived(ctx context.Context, pc ProviderContext, id uint64, archived bool) error {
	if _, err := s.Find(ctx, pc, id); err != nil {
		return err
	}
	if !archived {
		return s.threads.SetArchived(ctx, id, nil)
	}
	now := time.Now().UTC()
	return s.threads.SetArchived(ctx, id, &now)
}

func (s *clientSource) Delete(ctx context.Context, pc ProviderContext, id uint64) error {
	if _, err := s.Find(ctx, pc, id); err != nil {
		return err
	}
	return s.threads.SetDeleted(ctx, id, time.Now().UTC())
}

// DeleteMessage soft-deletes, sender-only: the provider may remove their own
// messages, never the client's.
func (s *clientSource) DeleteMessage(ctx context.Context, pc ProviderContext, threadID, msgID uint64) error {
	if _, err := s.Find(ctx, pc, threadID); err != nil {
		return err
	}
	m, err := s.threads.FindMessage(ctx, msgID, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if m.SenderType != model.SenderTypeProvider {
		return ErrForbidden
	}
	return s.threads.SoftDeleteMessage(ctx, msgID, time.Now().UTC())
}

func (s *clientSource) project(t model.ClientThread, unread int64, last *model.ClientMessage) ConversationThread {
	threadType := repository.ThreadTypeInquiry
	if t.IsTransaction() {
		threadType = repository.ThreadTypeTransaction
	}
	ct := ConversationThread{
		ID:            ThreadRef{Source: SourceClient, ID: t.ID}.String(),
		Source:        SourceClient,
		Subject:       t.Subject,
		ThreadType:    threadType,
		LastMessageAt: t.LastMessageAt,
		UnreadCount:   unread,
		Counterparty: Counterparty{
			UID:  t.ClientUID,
			Name: t.ClientUID,
		},
		ArchivedAt: t.ArchivedByProviderAt,
	}
	if last != nil {
		ct.LastMessage = &MessageSummary{
			ID:        last.ID,
			Body:      previewBody(last.Body),
			SenderUID: last.SenderUID,
			FromMe:    last.SenderType == model.SenderTypeProvider,
			CreatedAt: last.CreatedAt,
		}
	}
	return ct
}

func clientThreadMessage(m model.ClientMessage) ThreadMessage {
	return ThreadMessage{
		ID:        m.ID,
		ThreadID:  ThreadRef{Source: SourceClient, ID: m.ThreadID}.String(),
		FromMe:    m.SenderType == model.SenderTypeProvider,
		SenderUID: m.SenderUID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
		ReadAt:    m.ReadAt,
	}
}

func previewBody(body string) string {
	const max = 120
	if len(body) <= max {
		return body
	}
	// back off to a rune boundary so the cut never splits a multi-byte sequence
	cut := max
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut]
}
