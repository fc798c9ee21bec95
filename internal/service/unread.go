package service

import (
	"time"

	"github.com/denhaven/breeder-backend/internal/model"
)

// The two stores track reads in incompatible ways and the badge counts must
// stay faithful to each: client messages carry a per-message receipt, breeder
// participants carry a single watermark. These predicates are the single place
// either rule is written down; the repositories' grouped unread queries must
// agree with them.

// ClientUnreadCount counts client-authored messages with no read receipt.
func ClientUnreadCount(msgs []model.ClientMessage) int64 {
	var n int64
	for _, m := range msgs {
		if m.DeletedAt != nil {
			continue
		}
		if m.SenderType == model.SenderTypeClient && m.ReadAt == nil {
			n++
		}
	}
	return n
}

// BreederUnreadCount counts messages newer than the participant's watermark,
// skipping anything authored by one of the provider's own parties. A nil
// watermark means nothing has been read yet.
func BreederUnreadCount(msgs []model.BreederMessage, lastReadAt *time.Time, ownParties map[uint64]bool) int64 {
	var n int64
	for _, m := range msgs {
		if ownParties[m.SenderPartyID] {
			continue
		}
		if lastReadAt == nil || m.CreatedAt.After(*lastReadAt) {
			n++
		}
	}
	return n
}

func partySet(ids []uint64) map[uint64]bool {
	set := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
