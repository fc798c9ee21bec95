package repository

import (
	"context"

	"github.com/denhaven/breeder-backend/internal/model"
	"gorm.io/gorm"
)

type ProviderRepository interface {
	FindByUID(ctx context.Context, uid string) (*model.Provider, error)
	FindByID(ctx context.Context, id uint64) (*model.Provider, error)
	SetDB(db *gorm.DB)
}

type providerRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *providerRepository) FindByUID(ctx context.Context, uid string) (*model.Provider, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Provider
	if err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *providerRepository) FindByID(ctx context.Context, id uint64) (*model.Provider, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Provider
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
