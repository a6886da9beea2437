package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	first, err := store.Record(ctx, Event{Status: "Disconnected", Mode: "Warp"})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if first.ID == "" {
		t.Error("Record() should assign an ID")
	}
	if !first.RecordedAt.Equal(base) {
		t.Errorf("RecordedAt = %v, want %v", first.RecordedAt, base)
	}

	second, err := store.Record(ctx, Event{Status: "Connected", Connected: true, Mode: "DoH", RecordedAt: base.Add(time.Minute)})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if second.ID == first.ID {
		t.Error("IDs should be unique")
	}

	events, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Recent() returned %d events, want 2", len(events))
	}
	if events[0].ID != second.ID || !events[0].Connected || events[0].Mode != "DoH" {
		t.Errorf("newest event = %+v, want %+v", events[0], second)
	}
	if !events[0].RecordedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("RecordedAt = %v, want %v", events[0].RecordedAt, base.Add(time.Minute))
	}
	if events[1].Connected {
		t.Error("oldest event should be disconnected")
	}

	if events, _ := store.Recent(ctx, 1); len(events) != 1 {
		t.Errorf("Recent(1) returned %d events", len(events))
	}
	if events, _ := store.Recent(ctx, 0); len(events) != 0 {
		t.Errorf("Recent(0) returned %d events", len(events))
	}
}

func TestStore_Prune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		if _, err := store.Record(ctx, Event{Status: "Connected", RecordedAt: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("Prune() removed %d, want 3", removed)
	}

	n, err := store.Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("Count() = %d, %v; want 2", n, err)
	}

	events, _ := store.Recent(ctx, 10)
	if len(events) != 2 || events[1].RecordedAt.UnixMilli() != base.Add(3*time.Second).UnixMilli() {
		t.Errorf("Prune should keep the newest events, got %+v", events)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Record(ctx, Event{Status: "Connected"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
}
