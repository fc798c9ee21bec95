package service

import (
	"context"
	"errors"
	"time"

	"github.com/denhaven/breeder-backend/internal/model"
	"github.com/denhaven/breeder-backend/internal/repository"
	"gorm.io/gorm"
)

// breederSource normalizes the organizational store. Membership comes from the
// contact/party graph, so every call starts by resolving the provider's party
// set and threads that set through; a provider with no linked party simply has
// zero breeder threads.
type breederSource struct {
	threads repository.BreederThreadRepository
	parties repository.PartyRepository
}

func newBreederSource(threads repository.BreederThreadRepository, parties repository.PartyRepository) *breederSource {
	return &breederSource{threads: threads, parties: parties}
}

func (s *breederSource) resolvePartyIDs(ctx context.Context, pc ProviderContext) ([]uint64, error) {
	return s.parties.PartyIDsByMarketplaceUID(ctx, pc.UID)
}

func (s *breederSource) List(ctx context.Context, pc ProviderContext, f ThreadFilters) ([]ConversationThread, int64, error) {
	// The breeder store has no status column and every thread is inquiry-like,
	// so those filters can only exclude the whole source.
	if f.Status != "" || f.Type == repository.ThreadTypeTransaction {
		return nil, 0, nil
	}
	partyIDs, err := s.resolvePartyIDs(ctx, pc)
	if err != nil {
		return nil, 0, err
	}
	if len(partyIDs) == 0 {
		return nil, 0, nil
	}
	rows, total, err := s.threads.ListByParties(ctx, partyIDs, repository.BreederThreadFilter{Archived: f.Archived})
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint64, 0, len(rows))
	for _, t := range rows {
		ids = append(ids, t.ID)
	}
	unread, err := s.threads.UnreadCounts(ctx, ids, partyIDs)
	if err != nil {
		return nil, 0, err
	}
	last, err := s.threads.LastMessages(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	own := partySet(partyIDs)
	out := make([]ConversationThread, 0, len(rows))
	for _, t := range rows {
		cp, err := s.counterparty(ctx, t, partyIDs)
		if err != nil {
			return nil, 0, err
		}
		var summary *model.BreederMessage
		if m, ok := last[t.ID]; ok {
			summary = &m
		}
		out = append(out, projectBreederThread(t, unread[t.ID], summary, cp, own))
	}
	return out, total, nil
}

// Find resolves ownership and hands back the resolved party set so callers do
// not re-run the graph walk.
func (s *breederSource) Find(ctx context.Context, pc ProviderContext, id uint64) (*model.BreederThread, []uint64, error) {
	partyIDs, err := s.resolvePartyIDs(ctx, pc)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.threads.FindByID(ctx, id, partyIDs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return t, partyIDs, nil
}

func (s *breederSource) Get(ctx context.Context, pc ProviderContext, id uint64) (*ConversationThread, []ThreadMessage, error) {
	t, partyIDs, err := s.Find(ctx, pc, id)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.threads.ListMessages(ctx, t.ID)
	if err != nil {
		return nil, nil, err
	}
	watermark, err := s.ownWatermark(ctx, t.ID, partyIDs)
	if err != nil {
		return nil, nil, err
	}
	own := partySet(partyIDs)
	cp, err := s.counterparty(ctx, *t, partyIDs)
	if err != nil {
		return nil, nil, err
	}
	var summary *model.BreederMessage
	if len(msgs) > 0 {
		summary = &msgs[len(msgs)-1]
	}
	proj := projectBreederThread(*t, BreederUnreadCount(msgs, watermark, own), summary, cp, own)
	out := make([]ThreadMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, breederThreadMessage(m, own))
	}
	return &proj, out, nil
}

// Append writes the message and advances the sender's own watermark: sending
// implies having read everything up to now.
func (s *breederSource) Append(ctx context.Context, t *model.BreederThread, partyIDs []uint64, text string) (*ThreadMessage, error) {
	now := time.Now().UTC()
	sender, err := s.senderParty(ctx, t.ID, partyIDs)
	if err != nil {
		return nil, err
	}
	msg := &model.BreederMessage{
		ThreadID:      t.ID,
		SenderPartyID: sender,
		Body:          text,
		CreatedAt:     now,
	}
	if err := s.threads.CreateMessage(ctx, msg, now); err != nil {
		return nil, err
	}
	if err := s.threads.AdvanceLastRead(ctx, t.ID, partyIDs, now); err != nil {
		return nil, err
	}
	tm := breederThreadMessage(*msg, partySet(partyIDs))
	return &tm, nil
}

func (s *breederSource) MarkRead(ctx context.Context, pc ProviderContext, id uint64) error {
	t, partyIDs, err := s.Find(ctx, pc, id)
	if err != nil {
		return err
	}
	return s.threads.AdvanceLastRead(ctx, t.ID, partyIDs, time.Now().UTC())
}

// CounterpartyUID returns the marketplace account linked to the counterparty
// party, or "" when none is linked.
func (s *breederSource) CounterpartyUID(ctx context.Context, t *model.BreederThread, partyIDs []uint64) (string, error) {
	other, err := s.otherParticipant(ctx, t.ID, partyIDs)
	if err != nil || other == 0 {
		return "", err
	}
	uids, err := s.parties.MarketplaceUIDsByPartyIDs(ctx, []uint64{other})
	if err != nil {
		return "", err
	}
	return uids[other], nil
}

func (s *breederSource) ownWatermark(ctx context.Context, threadID uint64, partyIDs []uint64) (*time.Time, error) {
	parts, err := s.threads.Participants(ctx, threadID)
	if err != nil {
		return nil, err
	}
	own := partySet(partyIDs)
	for _, p := range parts {
		if own[p.PartyID] {
			return p.LastReadAt, nil
		}
	}
	return nil, nil
}

func (s *breederSource) senderParty(ctx context.Context, threadID uint64, partyIDs []uint64) (uint64, error) {
	parts, err := s.threads.Participants(ctx, threadID)
	if err != nil {
		return 0, err
	}
	own := partySet(partyIDs)
	for _, p := range parts {
		if own[p.PartyID] {
			return p.PartyID, nil
		}
	}
	return 0, ErrNotFound
}

func (s *breederSource) otherParticipant(ctx context.Context, threadID uint64, partyIDs []uint64) (uint64, error) {
	parts, err := s.threads.Participants(ctx, threadID)
	if err != nil {
		return 0, err
	}
	own := partySet(partyIDs)
	for _, p := range parts {
		if !own[p.PartyID] {
			return p.PartyID, nil
		}
	}
	return 0, nil
}

// counterparty resolves display identity with a fixed fallback chain: the
// tenant's primary organization when it has one, else the other participant's
// party. The verified badge keys off the organization branch, so the order
// must not change.
func (s *breederSource) counterparty(ctx context.Context, t model.BreederThread, partyIDs []uint64) (Counterparty, error) {
	if org, err := s.parties.PrimaryOrganization(ctx, t.TenantID); err != nil {
		return Counterparty{}, err
	} else if org != nil {
		return Counterparty{PartyID: org.ID, Name: org.Name, Verified: true}, nil
	}
	other, err := s.otherParticipant(ctx, t.ID, partyIDs)
	if err != nil {
		return Counterparty{}, err
	}
	if other == 0 {
		return Counterparty{Name: "Unknown party"}, nil
	}
	parties, err := s.parties.FindByIDs(ctx, []uint64{other})
	if err != nil {
		return Counterparty{}, err
	}
	p, ok := parties[other]
	if !ok {
		return Counterparty{PartyID: other, Name: "Unknown party"}, nil
	}
	return Counterparty{PartyID: p.ID, Name: p.Name}, nil
}

func projectBreederThread(t model.BreederThread, unread int64, last *model.BreederMessage, cp Counterparty, own map[uint64]bool) ConversationThread {
	ct := ConversationThread{
		ID:            ThreadRef{Source: SourceBreeder, ID: t.ID}.String(),
		Source:        SourceBreeder,
		Subject:       t.Subject,
		ThreadType:    repository.ThreadTypeInquiry,
		LastMessageAt: t.LastMessageAt,
		UnreadCount:   unread,
		Counterparty:  cp,
	}
	if t.Archived {
		// The shared flag has no timestamp of its own; surface it through the
		// projection's archivedAt using the thread's update time.
		at := t.UpdatedAt
		ct.ArchivedAt = &at
	}
	if last != nil {
		ct.LastMessage = &MessageSummary{
			ID:        last.ID,
			Body:      previewBody(last.Body),
			FromMe:    own[last.SenderPartyID],
			CreatedAt: last.CreatedAt,
		}
	}
	return ct
}

func breederThreadMessage(m model.BreederMessage, own map[uint64]bool) ThreadMessage {
	return ThreadMessage{
		ID:        m.ID,
		ThreadID:  ThreadRef{Source: SourceBreeder, ID: m.ThreadID}.String(),
		FromMe:    own[m.SenderPartyID],
		PartyID:   m.SenderPartyID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
