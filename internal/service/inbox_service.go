package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/denhaven/breeder-backend/internal/notify"
	"github.com/denhaven/breeder-backend/internal/repository"
	"gorm.io/gorm"
)

// InboxService is the provider-facing facade over both conversation stores:
// one merged, unread-aware, paginated listing plus per-thread operations that
// each resolve ownership in exactly one source.
type InboxService interface {
	ListThreads(ctx context.Context, pc ProviderContext, f ThreadFilters) (*ThreadPage, error)
	GetThread(ctx context.Context, pc ProviderContext, ref ThreadRef) (*ConversationThread, []ThreadMessage, error)
	SendMessage(ctx context.Context, pc ProviderContext, ref ThreadRef, text string) (*ThreadMessage, error)
	CreateInquiry(ctx context.Context, clientUID string, providerID uint64, listingID *uint64, subject, text string) (*ThreadMessage, error)
	MarkRead(ctx context.Context, pc ProviderContext, ref ThreadRef) error
	Archive(ctx context.Context, pc ProviderContext, ref ThreadRef) error
	Unarchive(ctx context.Context, pc ProviderContext, ref ThreadRef) error
	DeleteThread(ctx context.Context, pc ProviderContext, ref ThreadRef) error
	DeleteMessage(ctx context.Context, pc ProviderContext, ref ThreadRef, messageID uint64) error
}

// EventSink is the fire-and-forget boundary to the realtime notifier; see
// notify.Dispatcher for the real one.
type EventSink interface {
	Dispatch(ev notify.Event)
}

type inboxService struct {
	client    *clientSource
	breeder   *breederSource
	blocks    BlockService
	providers repository.ProviderRepository
	events    EventSink
}

func NewInboxService(
	clientThreads repository.ClientThreadRepository,
	breederThreads repository.BreederThreadRepository,
	parties repository.PartyRepository,
	providers repository.ProviderRepository,
	blocks BlockService,
	events EventSink,
) InboxService {
	return &inboxService{
		client:    newClientSource(clientThreads),
		breeder:   newBreederSource(breederThreads, parties),
		blocks:    blocks,
		providers: providers,
		events:    events,
	}
}

// ListThreads fans out to both adapters concurrently, then merges. Both reads
// run per request with no shared snapshot; see mergeThreads for the resulting
// cross-page caveat.
func (s *inboxService) ListThreads(ctx context.Context, pc ProviderContext, f ThreadFilters) (*ThreadPage, error) {
	f.normalize()
	if err := validateFilters(f); err != nil {
		return nil, err
	}

	var (
		wg           sync.WaitGroup
		clientRows   []ConversationThread
		breederRows  []ConversationThread
		clientTotal  int64
		breederTotal int64
		clientErr    error
		breederErr   error
	)
	if f.Source == "all" || f.Source == string(SourceClient) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clientRows, clientTotal, clientErr = s.client.List(ctx, pc, f)
		}()
	}
	if f.Source == "all" || f.Source == string(SourceBreeder) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			breederRows, breederTotal, breederErr = s.breeder.List(ctx, pc, f)
		}()
	}
	wg.Wait()
	if clientErr != nil {
		return nil, clientErr
	}
	if breederErr != nil {
		return nil, breederErr
	}

	merged := mergeThreads(clientRows, breederRows)
	return &ThreadPage{
		Threads: pageWindow(merged, f.Page, f.Limit),
		Total:   clientTotal + breederTotal,
		Page:    f.Page,
		Limit:   f.Limit,
	}, nil
}

func (s *inboxService) GetThread(ctx context.Context, pc ProviderContext, ref ThreadRef) (*ConversationThread, []ThreadMessage, error) {
	switch ref.Source {
	case SourceBreeder:
		return s.breeder.Get(ctx, pc, ref.ID)
	default:
		return s.client.Get(ctx, pc, ref.ID)
	}
}

// SendMessage resolves ownership in the owning adapter, gates on the
// counterparty's identity, appends, then hands fan-out to the event sink.
// Notification failure can never fail the send.
func (s *inboxService) SendMessage(ctx context.Context, pc ProviderContext, ref ThreadRef, text string) (*ThreadMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is required", ErrValidation)
	}

	switch ref.Source {
	case SourceBreeder:
		t, partyIDs, err := s.breeder.Find(ctx, pc, ref.ID)
		if err != nil {
			return nil, err
		}
		counterUID, err := s.breeder.CounterpartyUID(ctx, t, partyIDs)
		if err != nil {
			return nil, err
		}
		if counterUID != "" {
			blocked, err := s.blocks.IsBlocked(ctx, pc.BlockScope(), counterUID)
			if err != nil {
				return nil, err
			}
			if blocked {
				return nil, ErrBlocked
			}
		}
		msg, err := s.breeder.Append(ctx, t, partyIDs, text)
		if err != nil {
			return nil, err
		}
		s.notifyNewMessage(counterUID, msg)
		return msg, nil
	default:
		t, err := s.client.Find(ctx, pc, ref.ID)
		if err != nil {
			return nil, err
		}
		blocked, err := s.blocks.IsBlocked(ctx, pc.BlockScope(), t.ClientUID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, ErrBlocked
		}
		msg, err := s.client.Append(ctx, pc, t, text)
		if err != nil {
			return nil, err
		}
		s.notifyNewMessage(t.ClientUID, msg)
		return msg, nil
	}
}

// CreateInquiry is the client-side write path that births a client thread on
// its first message. The gate is consulted with the sender as the user, in the
// target provider's scope.
func (s *inboxService) CreateInquiry(ctx context.Context, clientUID string, providerID uint64, listingID *uint64, subject, text string) (*ThreadMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is required", ErrValidation)
	}
	provider, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	scope := ProviderContext{ProviderID: provider.ID, UID: provider.UID, TenantID: provider.TenantID}.BlockScope()
	blocked, err := s.blocks.IsBlocked(ctx, scope, clientUID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}
	_, msg, err := s.client.CreateInquiry(ctx, clientUID, providerID, listingID, subject, text)
	if err != nil {
		return nil, err
	}
	s.notifyNewMessage(provider.UID, msg)
	return msg, nil
}

func (s *inboxService) MarkRead(ctx context.Context, pc ProviderContext, ref ThreadRef) error {
	var err error
	switch ref.Source {
	case SourceBreeder:
		err = s.breeder.MarkRead(ctx, pc, ref.ID)
	default:
		err = s.client.MarkRead(ctx, pc, ref.ID)
	}
	if err != nil {
		return err
	}
	s.events.Dispatch(notify.NewEvent(notify.EventUnreadDelta, pc.UID, ref.String(), map[string]interface{}{
		"unreadCount": 0,
	}))
	return nil
}

func (s *inboxService) Archive(ctx context.Context, pc ProviderContext, ref ThreadRef) error {
	if ref.Source == SourceBreeder {
		return ErrUnsupported
	}
	return s.client.SetArchived(ctx, pc, ref.ID, true)
}

func (s *inboxService) Unarchive(ctx context.Context, pc ProviderContext, ref ThreadRef) error {
	if ref.Source == SourceBreeder {
		return ErrUnsupported
	}
	return s.client.SetArchived(ctx, pc, ref.ID, false)
}

func (s *inboxService) DeleteThread(ctx context.Context, pc ProviderContext, ref ThreadRef) error {
	if ref.Source == SourceBreeder {
		return ErrUnsupported
	}
	return s.client.Delete(ctx, pc, ref.ID)
}

func (s *inboxService) DeleteMessage(ctx context.Context, pc ProviderContext, ref ThreadRef, messageID uint64) error {
	if ref.Source == SourceBreeder {
		return ErrUnsupported
	}
	return s.client.DeleteMessage(ctx, pc, ref.ID, messageID)
}

func (s *inboxService) notifyNewMessage(recipientUID string, msg *ThreadMessage) {
	if recipientUID == "" {
		return
	}
	s.events.Dispatch(notify.NewEvent(notify.EventMessageNew, recipientUID, msg.ThreadID, map[string]interface{}{
		"messageId": msg.ID,
		"preview":   previewBody(msg.Body),
	}))
	s.events.Dispatch(notify.NewEvent(notify.EventUnreadDelta, recipientUID, msg.ThreadID, map[string]interface{}{
		"delta": 1,
	}))
}

func validateFilters(f ThreadFilters) error {
	switch f.Source {
	case "all", string(SourceClient), string(SourceBreeder):
	default:
		return fmt.Errorf("%w: unknown source %q", ErrValidation, f.Source)
	}
	switch f.Archived {
	case "", repository.ArchivedExclude, repository.ArchivedOnly, repository.ArchivedAll:
	default:
		return fmt.Errorf("%w: archived must be true, false or all", ErrValidation)
	}
	switch f.Type {
	case "", repository.ThreadTypeInquiry, repository.ThreadTypeTransaction:
	default:
		return fmt.Errorf("%w: type must be inquiry or transaction", ErrValidation)
	}
	return nil
}
