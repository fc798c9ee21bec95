package repository

import (
	"context"
	"errors"

	"github.com/denhaven/breeder-backend/internal/model"
	"gorm.io/gorm"
)

type PartyRepository interface {
	PartyIDsByMarketplaceUID(ctx context.Context, uid string) ([]uint64, error)
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Party, error)
	PrimaryOrganization(ctx context.Context, tenantID uint64) (*model.Party, error)
	MarketplaceUIDsByPartyIDs(ctx context.Context, ids []uint64) (map[uint64]string, error)
	SetDB(db *gorm.DB)
}

type partyRepository struct {
	db *gorm.DB
}

func NewPartyRepository(db *gorm.DB) PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) SetDB(db *gorm.DB) {
	r.db = db
}

// PartyIDsByMarketplaceUID walks the contact graph: every contact row linking
// the marketplace account to a party yields one party id. No rows is a normal
// outcome for providers with no breeder-side linkage.
func (r *partyRepository) PartyIDsByMarketplaceUID(ctx context.Context, uid string) ([]uint64, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ids []uint64
	if err := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("marketplace_user_uid = ?", uid).
		Pluck("party_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *partyRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Party, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	out := make(map[uint64]model.Party, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var parties []model.Party
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&parties).Error; err != nil {
		return nil, err
	}
	for _, p := range parties {
		out[p.ID] = p
	}
	return out, nil
}

// MarketplaceUIDsByPartyIDs is the reverse walk: party id to the marketplace
// account it is linked to, if any. Parties with no contact row are absent from
// the result.
func (r *partyRepository) MarketplaceUIDsByPartyIDs(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	out := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var contacts []model.Contact
	if err := r.db.WithContext(ctx).
		Where("party_id IN ?", ids).
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	for _, c := range contacts {
		out[c.PartyID] = c.MarketplaceUserUID
	}
	return out, nil
}

// PrimaryOrganization returns nil without error when the tenant has none; the
// caller falls back to the other participant's party for display.
func (r *partyRepository) PrimaryOrganization(ctx context.Context, tenantID uint64) (*model.Party, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Party
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ? AND is_primary = ?", tenantID, model.PartyKindOrganization, true).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
