package model

import "time"

const BlockLevelFull = "full"

// BlockRecord denies message creation from UserUID into ScopeID. ScopeID is the
// provider's tenant id, or a negative pseudo-tenant derived from the provider id
// when the provider has no tenant. A record is live while LiftedAt is null;
// lifting keeps the row for audit instead of deleting it.
type BlockRecord struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ScopeID          int64      `gorm:"column:scope_id;index:idx_scope_user" json:"scopeId"`
	UserUID          string     `gorm:"column:user_uid;size:128;index:idx_scope_user" json:"userUid"`
	Level            string     `gorm:"column:level;size:32;default:full" json:"level"`
	Reason           string     `gorm:"column:reason;size:500" json:"reason"`
	BlockedByPartyID *uint64    `gorm:"column:blocked_by_party_id" json:"blockedByPartyId,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	LiftedAt         *time.Time `gorm:"column:lifted_at" json:"liftedAt,omitempty"`
}

func (BlockRecord) TableName() string {
	return "block_records"
}
