package model

import "time"

const (
	SenderTypeClient   = "client"
	SenderTypeProvider = "provider"
)

type ClientMessage struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID   uint64     `gorm:"column:thread_id;index" json:"threadId"`
	SenderUID  string     `gorm:"column:sender_uid;size:128;index" json:"senderUid"`
	SenderType string     `gorm:"column:sender_type;size:16;not null" json:"senderType"`
	Body       string     `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	ReadAt     *time.Time `gorm:"column:read_at" json:"readAt,omitempty"`
	DeletedAt  *time.Time `gorm:"column:deleted_at" json:"deletedAt,omitempty"`
}

func (ClientMessage) TableName() string {
	return "client_messages"
}
