package repository

import (
	"context"
	"errors"
	"time"

	"github.com/denhaven/breeder-backend/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

// Archived filter values. Empty behaves like ArchivedExclude.
const (
	ArchivedExclude = "false"
	ArchivedOnly    = "true"
	ArchivedAll     = "all"
)

const (
	ThreadTypeInquiry     = "inquiry"
	ThreadTypeTransaction = "transaction"
)

// ClientThreadFilter narrows the provider's list. Soft-deleted threads are
// always excluded regardless of the filter.
type ClientThreadFilter struct {
	Status   string
	Type     string // inquiry | transaction | ""
	Archived string // false (default) | true | all
}

type ClientThreadRepository interface {
	Create(ctx context.Context, thread *model.ClientThread) error
	ListByProvider(ctx context.Context, providerID uint64, f ClientThreadFilter) ([]model.ClientThread, int64, error)
	FindByID(ctx context.Context, id, providerID uint64) (*model.ClientThread, error)
	ListMessages(ctx context.Context, threadID uint64) ([]model.ClientMessage, error)
	LastMessages(ctx context.Context, threadIDs []uint64) (map[uint64]model.ClientMessage, error)
	UnreadCounts(ctx context.Context, threadIDs []uint64) (map[uint64]int64, error)
	CreateMessage(ctx context.Context, msg *model.ClientMessage, stamp ThreadStamp) error
	MarkMessagesRead(ctx context.Context, threadID uint64, now time.Time) error
	FindMessage(ctx context.Context, msgID, threadID uint64) (*model.ClientMessage, error)
	SoftDeleteMessage(ctx context.Context, msgID uint64, now time.Time) error
	SetArchived(ctx context.Context, threadID uint64, at *time.Time) error
	SetDeleted(ctx context.Context, threadID uint64, at time.Time) error
	SetDB(db *gorm.DB)
}

// ThreadStamp carries the thread-side column updates that must commit in the
// same transaction as a message insert.
type ThreadStamp struct {
	LastMessageAt        time.Time
	FirstClientMessageAt *time.Time
	FirstProviderReplyAt *time.Time
	ResponseTimeSeconds  *int64
}

type clientThreadRepository struct {
	db *gorm.DB
}

func NewClientThreadRepository(db *gorm.DB) ClientThreadRepository {
	return &clientThreadRepository{db: db}
}

func (r *clientThreadRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *clientThreadRepository) Create(ctx context.Context, thread *model.ClientThread) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *clientThreadRepository) ListByProvider(ctx context.Context, providerID uint64, f ClientThreadFilter) ([]model.ClientThread, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Model(&model.ClientThread{}).
		Where("provider_id = ?", providerID).
		Where("deleted_by_provider_at IS NULL")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	switch f.Type {
	case ThreadTypeInquiry:
		q = q.Where("transaction_id IS NULL")
	case ThreadTypeTransaction:
		q = q.Where("transaction_id IS NOT NULL")
	}
	switch f.Archived {
	case ArchivedOnly:
		q = q.Where("archived_by_provider_at IS NOT NULL")
	case ArchivedAll:
	default:
		q = q.Where("archived_by_provider_at IS NULL")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.ClientThread
	if err := q.Order("last_message_at DESC").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *clientThreadRepository) FindByID(ctx context.Context, id, providerID uint64) (*model.ClientThread, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var t model.ClientThread
	if err := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ? AND deleted_by_provider_at IS NULL", id, providerID).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *clientThreadRepository) ListMessages(ctx context.Context, threadID uint64) ([]model.ClientMessage, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.ClientMessage
	if err := r.db.WithContext(ctx).
		Where("thread_id = ? AND deleted_at IS NULL", threadID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *clientThreadRepository) LastMessages(ctx context.Context, threadIDs []uint64) (map[uint64]model.ClientMessage, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	out := make(map[uint64]model.ClientMessage, len(threadIDs))
	if len(threadIDs) == 0 {
		return out, nil
	}
	var msgs []model.ClientMessage
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&model.ClientMessage{}).
			Select("MAX(id)").
			Where("thread_id IN ? AND deleted_at IS NULL", threadIDs).
			Group("thread_id")).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	for _, m := range msgs {
		out[m.ThreadID] = m
	}
	return out, nil
}

// UnreadCounts returns per-thread counts of client-authored messages with no
// read receipt, in one grouped query rather than one query per thread.
func (r *clientThreadRepository) UnreadCounts(ctx context.Context, threadIDs []uint64) (map[uint64]int64, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	out := make(map[uint64]int64, len(threadIDs))
	if len(threadIDs) == 0 {
		return out, nil
	}
	type row struct {
		ThreadID uint64
		Cnt      int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.ClientMessage{}).
		Select("thread_id, COUNT(*) AS cnt").
		Where("thread_id IN ? AND sender_type = ? AND read_at IS NULL AND deleted_at IS NULL", threadIDs, model.SenderTypeClient).
		Group("thread_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.ThreadID] = rw.Cnt
	}
	return out, nil
}

func (r *clientThreadRepository) CreateMessage(ctx context.Context, msg *model.ClientMessage, stamp ThreadStamp) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"last_message_at": stamp.LastMessageAt,
		}
		if stamp.FirstClientMessageAt != nil {
			updates["first_client_message_at"] = *stamp.FirstClientMessageAt
		}
		if stamp.FirstProviderReplyAt != nil {
			updates["first_provider_reply_at"] = *stamp.FirstProviderReplyAt
		}
		if stamp.ResponseTimeSeconds != nil {
			updates["response_time_seconds"] = *stamp.ResponseTimeSeconds
		}
		return tx.Model(&model.ClientThread{}).
			Where("id = ?", msg.ThreadID).
			Updates(updates).Error
	})
}

func (r *clientThreadRepository) MarkMessagesRead(ctx context.Context, threadID uint64, now time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(&model.ClientMessage{}).
		Where("thread_id = ? AND sender_type = ? AND read_at IS NULL", threadID, model.SenderTypeClient).
		Update("read_at", now).Error
}

func (r *clientThreadRepository) FindMessage(ctx context.Context, msgID, threadID uint64) (*model.ClientMessage, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var m model.ClientMessage
	if err := r.db.WithContext(ctx).
		Where("id = ? AND thread_id = ? AND deleted_at IS NULL", msgID, threadID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *clientThreadRepository) SoftDeleteMessage(ctx context.Context, msgID uint64, now time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(&model.ClientMessage{}).
		Where("id = ? AND deleted_at IS NULL", msgID).
		Update("deleted_at", now).Error
}

// SetArchived with a nil timestamp unarchives. Re-archiving an archived thread
// keeps the original timestamp; the guard makes the toggle a value-level no-op
// the same way SetDeleted guards the delete stamp.
func (r *clientThreadRepository) SetArchived(ctx context.Context, threadID uint64, at *time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Model(&model.ClientThread{}).
		Where("id = ?", threadID)
	if at != nil {
		q = q.Where("archived_by_provider_at IS NULL")
	}
	return q.Update("archived_by_provider_at", at).Error
}

func (r *clientThreadRepository) SetDeleted(ctx context.Context, threadID uint64, at time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(&model.ClientThread{}).
		Where("id = ? AND deleted_by_provider_at IS NULL", threadID).
		Update("deleted_by_provider_at", at).Error
}
