package model

import "time"

type BreederMessage struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID      uint64    `gorm:"column:thread_id;index" json:"threadId"`
	SenderPartyID uint64    `gorm:"column:sender_party_id;index" json:"senderPartyId"`
	Body          string    `gorm:"type:text;not null" json:"body"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (BreederMessage) TableName() string {
	return "breeder_messages"
}
