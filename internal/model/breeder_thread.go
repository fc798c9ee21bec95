package model

import "time"

// BreederThread is an organizational thread keyed by tenant. Membership is the
// participants collection, not a foreign key to a user. Archived is a single
// shared flag; there is no per-participant archive/delete column.
type BreederThread struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID      uint64     `gorm:"column:tenant_id;index" json:"tenantId"`
	Subject       string     `gorm:"column:subject;size:255" json:"subject"`
	LastMessageAt *time.Time `gorm:"column:last_message_at;index" json:"lastMessageAt,omitempty"`
	Archived      bool       `gorm:"column:archived;default:false" json:"archived"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (BreederThread) TableName() string {
	return "breeder_threads"
}

// BreederParticipant carries the per-party read watermark: everything created
// after LastReadAt is unread to that party, everything before is read.
type BreederParticipant struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID   uint64     `gorm:"column:thread_id;uniqueIndex:uniq_thread_party" json:"threadId"`
	PartyID    uint64     `gorm:"column:party_id;uniqueIndex:uniq_thread_party" json:"partyId"`
	LastReadAt *time.Time `gorm:"column:last_read_at" json:"lastReadAt,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

func (BreederParticipant) TableName() string {
	return "breeder_participants"
}
