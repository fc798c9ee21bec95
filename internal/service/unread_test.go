package service

import (
	"testing"
	"time"

	"github.com/denhaven/breeder-backend/internal/model"
)

func TestClientUnreadCount(t *testing.T) {
	now := time.Now().UTC()
	read := now.Add(-time.Hour)
	msgs := []model.ClientMessage{
		{SenderType: model.SenderTypeClient},
		{SenderType: model.SenderTypeClient},
		{SenderType: model.SenderTypeClient, ReadAt: &read},
		{SenderType: model.SenderTypeProvider},
		{SenderType: model.SenderTypeClient, DeletedAt: &now},
	}
	if got := ClientUnreadCount(msgs); got != 2 {
		t.Fatalf("got %d want 2", got)
	}
}

func TestClientUnreadCountAllRead(t *testing.T) {
	now := time.Now().UTC()
	msgs := []model.ClientMessage{
		{SenderType: model.SenderTypeClient, ReadAt: &now},
		{SenderType: model.SenderTypeProvider},
	}
	if got := ClientUnreadCount(msgs); got != 0 {
		t.Fatalf("got %d want 0", got)
	}
}

func TestBreederUnreadCountNilWatermark(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	own := map[uint64]bool{10: true, 11: true}
	msgs := []model.BreederMessage{
		{SenderPartyID: 20, CreatedAt: base},
		{SenderPartyID: 10, CreatedAt: base.Add(time.Minute)},
		{SenderPartyID: 21, CreatedAt: base.Add(2 * time.Minute)},
		{SenderPartyID: 11, CreatedAt: base.Add(3 * time.Minute)},
	}
	// nil watermark: every message not authored by an own party is unread
	if got := BreederUnreadCount(msgs, nil, own); got != 2 {
		t.Fatalf("got %d want 2", got)
	}
}

func TestBreederUnreadCountWatermark(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	own := map[uint64]bool{10: true}
	msgs := []model.BreederMessage{
		{SenderPartyID: 20, CreatedAt: base},
		{SenderPartyID: 20, CreatedAt: base.Add(time.Minute)},
		{SenderPartyID: 20, CreatedAt: base.Add(2 * time.Minute)},
	}
	mark := base.Add(time.Minute)
	if got := BreederUnreadCount(msgs, &mark, own); got != 1 {
		t.Fatalf("got %d want 1", got)
	}
	// watermark exactly at the newest message: nothing unread
	mark = base.Add(2 * time.Minute)
	if got := BreederUnreadCount(msgs, &mark, own); got != 0 {
		t.Fatalf("got %d want 0", got)
	}
}

func TestBreederUnreadCountMultiPartyExclusion(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	// provider holds parties in two tenants; both must be excluded
	own := map[uint64]bool{10: true, 30: true}
	msgs := []model.BreederMessage{
		{SenderPartyID: 30, CreatedAt: base},
		{SenderPartyID: 20, CreatedAt: base.Add(time.Minute)},
	}
	if got := BreederUnreadCount(msgs, nil, own); got != 1 {
		t.Fatalf("got %d want 1", got)
	}
}
