package model

import "time"

const (
	PartyKindPerson       = "person"
	PartyKindOrganization = "organization"
)

// Party is a person or organization in the breeder-side contact graph. It is
// distinct from a marketplace account; the link between the two is a Contact.
type Party struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  uint64    `gorm:"column:tenant_id;index" json:"tenantId"`
	Name      string    `gorm:"column:name;size:255" json:"name"`
	Kind      string    `gorm:"column:kind;size:32;default:person" json:"kind"`
	IsPrimary bool      `gorm:"column:is_primary;default:false" json:"isPrimary"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Party) TableName() string {
	return "parties"
}

// Contact links a marketplace account to a party within one tenant. The same
// marketplace user may be linked to parties in several tenants.
type Contact struct {
	ID                 uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID           uint64    `gorm:"column:tenant_id;index" json:"tenantId"`
	PartyID            uint64    `gorm:"column:party_id;index" json:"partyId"`
	MarketplaceUserUID string    `gorm:"column:marketplace_user_uid;size:128;index" json:"marketplaceUserUid"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Contact) TableName() string {
	return "contacts"
}
