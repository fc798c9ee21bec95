package repository

import (
	"context"
	"errors"
	"time"

	"github.com/denhaven/breeder-backend/internal/model"
	"gorm.io/gorm"
)

type BlockRepository interface {
	FindLive(ctx context.Context, scopeID int64, userUID string) (*model.BlockRecord, error)
	Create(ctx context.Context, rec *model.BlockRecord) error
	Lift(ctx context.Context, scopeID int64, userUID string, now time.Time) error
	ListLive(ctx context.Context, scopeID int64) ([]model.BlockRecord, error)
	SetDB(db *gorm.DB)
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

func (r *blockRepository) SetDB(db *gorm.DB) {
	r.db = db
}

// FindLive returns nil without error when no live record exists.
func (r *blockRepository) FindLive(ctx context.Context, scopeID int64, userUID string) (*model.BlockRecord, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rec model.BlockRecord
	if err := r.db.WithContext(ctx).
		Where("scope_id = ? AND user_uid = ? AND lifted_at IS NULL", scopeID, userUID).
		First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *blockRepository) Create(ctx context.Context, rec *model.BlockRecord) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *blockRepository) Lift(ctx context.Context, scopeID int64, userUID string, now time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(&model.BlockRecord{}).
		Where("scope_id = ? AND user_uid = ? AND lifted_at IS NULL", scopeID, userUID).
		Update("lifted_at", now).Error
}

func (r *blockRepository) ListLive(ctx context.Context, scopeID int64) ([]model.BlockRecord, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.BlockRecord
	if err := r.db.WithContext(ctx).
		Where("scope_id = ? AND lifted_at IS NULL", scopeID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
