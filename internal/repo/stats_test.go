package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/skillswap-backend/internal/domain"
)

func TestMessagesStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t)
	if _, _, err := MessagesStats(context.Background(), db, "r1"); err == nil {
		t.Fatalf("expected error due to missing messages table")
	}
}

func TestMessagesStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, &domain.ChatMessage{})
	count, latest, err := MessagesStats(context.Background(), db, "r1")
	if err != nil || count != 0 || latest != nil {
		t.Fatalf("expected (0, nil, nil), got (%d, %v, %v)", count, latest, err)
	}
}

func TestMessagesStats_FilterAndLatest(t *testing.T) {
	db := newTestDB(t, &domain.ChatMessage{})
	ctx := context.Background()
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(5 * time.Minute)
	for _, m := range []*domain.ChatMessage{
		{RequestID: "r1", FromUser: "a", ToUser: "b", Content: "x", Timestamp: t2},
		{RequestID: "r1", FromUser: "b", ToUser: "a", Content: "y", Timestamp: t1},
		{RequestID: "r2", FromUser: "a", ToUser: "b", Content: "z", Timestamp: t2.Add(time.Hour)},
	} {
		if err := CreateMessage(ctx, db, m); err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
	}
	count, latest, err := MessagesStats(ctx, db, "r1")
	if err != nil {
		t.Fatalf("MessagesStats: %v", err)
	}
	if count != 2 || latest == nil || !latest.Equal(t2) {
		t.Fatalf("unexpected stats: count=%d latest=%v", count, latest)
	}
}

func TestRequestsStats(t *testing.T) {
	db := newTestDB(t, &domain.ExchangeRequest{})
	ctx := context.Background()

	if count, latest, err := RequestsStats(ctx, db, "alice"); err != nil || count != 0 || latest != nil {
		t.Fatalf("expected empty stats, got (%d, %v, %v)", count, latest, err)
	}

	t1 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.ExchangeRequest{
		{ID: "r1", SkillID: "s", FromUser: "alice", ToUser: "bob", Status: domain.StatusPending, CreatedAt: t1, UpdatedAt: t1},
		{ID: "r2", SkillID: "s", FromUser: "carol", ToUser: "alice", Status: domain.StatusPending, CreatedAt: t1, UpdatedAt: t1.Add(time.Hour)},
		{ID: "r3", SkillID: "s", FromUser: "bob", ToUser: "carol", Status: domain.StatusPending, CreatedAt: t1, UpdatedAt: t1.Add(2 * time.Hour)},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	count, latest, err := RequestsStats(ctx, db, "alice")
	if err != nil || count != 2 || latest == nil || !latest.Equal(t1.Add(time.Hour)) {
		t.Fatalf("unexpected stats: count=%d latest=%v err=%v", count, latest, err)
	}
}
