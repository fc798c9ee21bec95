package model

import "time"

type Provider struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UID         string    `gorm:"column:uid;size:128;uniqueIndex" json:"uid"`
	TenantID    *uint64   `gorm:"column:tenant_id;index" json:"tenantId,omitempty"`
	DisplayName string    `gorm:"column:display_name;size:255" json:"displayName"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Provider) TableName() string {
	return "providers"
}
