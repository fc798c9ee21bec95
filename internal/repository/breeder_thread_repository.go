package repository

import (
	"context"
	"time"

	"github.com/denhaven/breeder-backend/internal/model"
	"gorm.io/gorm"
)

// BreederThreadFilter mirrors ClientThreadFilter where the breeder store can
// honor it. Status does not exist on breeder threads and Type is always
// inquiry-like, so only the archived axis applies.
type BreederThreadFilter struct {
	Archived string // false (default) | true | all
}

type BreederThreadRepository interface {
	ListByParties(ctx context.Context, partyIDs []uint64, f BreederThreadFilter) ([]model.BreederThread, int64, error)
	FindByID(ctx context.Context, id uint64, partyIDs []uint64) (*model.BreederThread, error)
	Participants(ctx context.Context, threadID uint64) ([]model.BreederParticipant, error)
	ListMessages(ctx context.Context, threadID uint64) ([]model.BreederMessage, error)
	LastMessages(ctx context.Context, threadIDs []uint64) (map[uint64]model.BreederMessage, error)
	UnreadCounts(ctx context.Context, threadIDs, partyIDs []uint64) (map[uint64]int64, error)
	CreateMessage(ctx context.Context, msg *model.BreederMessage, lastMessageAt time.Time) error
	AdvanceLastRead(ctx context.Context, threadID uint64, partyIDs []uint64, now time.Time) error
	SetDB(db *gorm.DB)
}

type breederThreadRepository struct {
	db *gorm.DB
}

func NewBreederThreadRepository(db *gorm.DB) BreederThreadRepository {
	return &breederThreadRepository{db: db}
}

func (r *breederThreadRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *breederThreadRepository) ListByParties(ctx context.Context, partyIDs []uint64, f BreederThreadFilter) ([]model.BreederThread, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	if len(partyIDs) == 0 {
		return nil, 0, nil
	}
	q := r.db.WithContext(ctx).Model(&model.BreederThread{}).
		Where("id IN (?)", r.db.Model(&model.BreederParticipant{}).
			Select("thread_id").
			Where("party_id IN ?", partyIDs))
	switch f.Archived {
	case ArchivedOnly:
		q = q.Where("archived = ?", true)
	case ArchivedAll:
	default:
		q = q.Where("archived = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.BreederThread
	if err := q.Order("last_message_at DESC").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *breederThreadRepository) FindByID(ctx context.Context, id uint64, partyIDs []uint64) (*model.BreederThread, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if len(partyIDs) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var t model.BreederThread
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&model.BreederParticipant{}).
			Select("thread_id").
			Where("thread_id = ? AND party_id IN ?", id, partyIDs)).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *breederThreadRepository) Participants(ctx context.Context, threadID uint64) ([]model.BreederParticipant, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var parts []model.BreederParticipant
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *breederThreadRepository) ListMessages(ctx context.Context, threadID uint64) ([]model.BreederMessage, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.BreederMessage
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *breederThreadRepository) LastMessages(ctx context.Context, threadIDs []uint64) (map[uint64]model.BreederMessage, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	out := make(map[uint64]model.BreederMessage, len(threadIDs))
	if len(threadIDs) == 0 {
		return out, nil
	}
	var msgs []model.BreederMessage
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&model.BreederMessage{}).
			Select("MAX(id)").
			Where("thread_id IN ?", threadIDs).
			Group("thread_id")).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	for _, m := range msgs {
		out[m.ThreadID] = m
	}
	return out, nil
}

// UnreadCounts compares each message against the provider participant's own
// watermark. Messages from any of the provider's linked parties never count,
// which matters when the provider holds parties in several tenants.
func (r *breederThreadRepository) UnreadCounts(ctx context.Context, threadIDs, partyIDs []uint64) (map[uint64]int64, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	out := make(map[uint64]int64, len(threadIDs))
	if len(threadIDs) == 0 || len(partyIDs) == 0 {
		return out, nil
	}
	type row struct {
		ThreadID uint64
		Cnt      int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.BreederMessage{}).
		Select("breeder_messages.thread_id, COUNT(*) AS cnt").
		Joins("JOIN breeder_participants p ON p.thread_id = breeder_messages.thread_id AND p.party_id IN ?", partyIDs).
		Where("breeder_messages.thread_id IN ?", threadIDs).
		Where("breeder_messages.sender_party_id NOT IN ?", partyIDs).
		Where("p.last_read_at IS NULL OR breeder_messages.created_at > p.last_read_at").
		Group("breeder_messages.thread_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.ThreadID] = rw.Cnt
	}
	return out, nil
}

func (r *breederThreadRepository) CreateMessage(ctx context.Context, msg *model.BreederMessage, lastMessageAt time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.BreederThread{}).
			Where("id = ?", msg.ThreadID).
			Update("last_message_at", lastMessageAt).Error
	})
}

// AdvanceLastRead is an idempotent watermark write; a stale overwrite only
// leaves the thread looking unread a little longer.
func (r *breederThreadRepository) AdvanceLastRead(ctx context.Context, threadID uint64, partyIDs []uint64, now time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	if len(partyIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.BreederParticipant{}).
		Where("thread_id = ? AND party_id IN ?", threadID, partyIDs).
		Update("last_read_at", now).Error
}
