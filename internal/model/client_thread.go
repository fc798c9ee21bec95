package model

import "time"

const (
	ClientThreadStatusActive = "active"
	ClientThreadStatusClosed = "closed"
)

// ClientThread is a direct buyer<->provider conversation. The archive/delete
// timestamps are the provider's own view only; the client side keeps its own
// flags elsewhere and they are never read or written here.
type ClientThread struct {
	ID                   uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientUID            string     `gorm:"column:client_uid;size:128;index" json:"clientUid"`
	ProviderID           uint64     `gorm:"column:provider_id;index" json:"providerId"`
	ListingID            *uint64    `gorm:"column:listing_id;index" json:"listingId,omitempty"`
	TransactionID        *uint64    `gorm:"column:transaction_id;index" json:"transactionId,omitempty"`
	Subject              string     `gorm:"column:subject;size:255" json:"subject"`
	Status               string     `gorm:"column:status;size:32;default:active" json:"status"`
	LastMessageAt        *time.Time `gorm:"column:last_message_at;index" json:"lastMessageAt,omitempty"`
	ArchivedByProviderAt *time.Time `gorm:"column:archived_by_provider_at" json:"archivedByProviderAt,omitempty"`
	DeletedByProviderAt  *time.Time `gorm:"column:deleted_by_provider_at" json:"deletedByProviderAt,omitempty"`
	FirstClientMessageAt *time.Time `gorm:"column:first_client_message_at" json:"firstClientMessageAt,omitempty"`
	FirstProviderReplyAt *time.Time `gorm:"column:first_provider_reply_at" json:"firstProviderReplyAt,omitempty"`
	ResponseTimeSeconds  *int64     `gorm:"column:response_time_seconds" json:"responseTimeSeconds,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ClientThread) TableName() string {
	return "client_threads"
}

// IsTransaction reports whether the thread was opened by a transaction rather
// than a free-form inquiry.
func (t ClientThread) IsTransaction() bool {
	return t.TransactionID != nil
}
