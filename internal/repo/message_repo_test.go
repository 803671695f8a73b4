package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/skillswap-backend/internal/domain"
)

func TestCreateMessage_AssignsID(t *testing.T) {
	db := newTestDB(t, &domain.ChatMessage{})
	m := &domain.ChatMessage{RequestID: "r1", FromUser: "alice", ToUser: "bob", Content: "hi", Timestamp: time.Now().UTC()}
	if err := CreateMessage(context.Background(), db, m); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if m.ID == "" {
		t.Fatalf("expected ID to be assigned")
	}
}

func TestListMessages_OrderedByTimestampNotInsertion(t *testing.T) {
	db := newTestDB(t, &domain.ChatMessage{})
	ctx := context.Background()
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)
	t3 := t2.Add(time.Second)

	// Insert out of order: t3, t1, t2.
	for _, c := range []struct {
		content string
		ts      time.Time
	}{{"third", t3}, {"first", t1}, {"second", t2}} {
		m := &domain.ChatMessage{RequestID: "r1", FromUser: "a", ToUser: "b", Content: c.content, Timestamp: c.ts}
		if err := CreateMessage(ctx, db, m); err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
	}
	other := &domain.ChatMessage{RequestID: "r2", FromUser: "a", ToUser: "b", Content: "x", Timestamp: t1}
	if err := CreateMessage(ctx, db, other); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	got, err := ListMessages(ctx, db, "r1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Content != want[i] {
			t.Fatalf("position %d = %q; want %q", i, got[i].Content, want[i])
		}
	}
}

func TestListMessages_TiesKeepInsertionOrder(t *testing.T) {
	db := newTestDB(t, &domain.ChatMessage{})
	ctx := context.Background()
	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	for _, c := range []string{"a", "b", "c", "d"} {
		m := &domain.ChatMessage{RequestID: "r1", FromUser: "x", ToUser: "y", Content: c, Timestamp: ts}
		if err := CreateMessage(ctx, db, m); err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
	}
	got, err := ListMessages(ctx, db, "r1")
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		if got[i].Content != want {
			t.Fatalf("tie order broken at %d: %q", i, got[i].Content)
		}
	}
}

func TestCountMessages(t *testing.T) {
	db := newTestDB(t)
	if _, err := CountMessages(context.Background(), db, "r1"); err == nil {
		t.Fatalf("expected error without messages table")
	}

	db = newTestDB(t, &domain.ChatMessage{})
	for i := 0; i < 3; i++ {
		m := &domain.ChatMessage{RequestID: "r1", FromUser: "a", ToUser: "b", Content: "x", Timestamp: time.Now().UTC()}
		if err := CreateMessage(context.Background(), db, m); err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
	}
	n, err := CountMessages(context.Background(), db, "r1")
	if err != nil || n != 3 {
		t.Fatalf("CountMessages = %d, %v; want 3", n, err)
	}
}
