package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/burnwatch/burnwatch/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testSnapshot(takenAt time.Time, used float64) core.Snapshot {
	reset := takenAt.Add(time.Hour)
	return core.Snapshot{
		Timestamp:    takenAt,
		Status:       core.StatusOK,
		Subscription: core.QuotaFamily{Limit: 1000, Used: used, ResetsAt: reset},
		Search:       core.QuotaFamily{Limit: 50, Used: 5, ResetsAt: reset},
		ToolCalls:    core.QuotaFamily{Limit: 400, Used: 40, ResetsAt: reset},
	}
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		snap := testSnapshot(base.Add(time.Duration(i)*time.Minute), float64(100*(i+1)))
		if err := store.Append(ctx, snap); err != nil {
			t.Fatalf("Append() = %v", err)
		}
	}

	entries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent(3) returned %d entries", len(entries))
	}
	// newest first
	if entries[0].Subscription.Used != 500 {
		t.Errorf("newest entry used = %v, want 500", entries[0].Subscription.Used)
	}
	if entries[2].Subscription.Used != 300 {
		t.Errorf("third entry used = %v, want 300", entries[2].Subscription.Used)
	}
	if !entries[0].TakenAt.After(entries[1].TakenAt) {
		t.Error("entries are not ordered newest first")
	}
}

func TestAppendSkipsErrorSnapshots(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, core.Snapshot{Status: core.StatusError, Message: "boom"}); err != nil {
		t.Fatalf("Append() = %v", err)
	}
	if err := store.Append(ctx, core.Snapshot{Status: core.StatusAuth}); err != nil {
		t.Fatalf("Append() = %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() = %d entries, want 0 (error snapshots skipped)", len(entries))
	}
}

func TestRecentRoundTripsTimestamps(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	takenAt := time.Date(2026, 8, 29, 7, 30, 15, 0, time.UTC)
	if err := store.Append(ctx, testSnapshot(takenAt, 250)); err != nil {
		t.Fatalf("Append() = %v", err)
	}

	entries, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Recent() = %d entries, want 1", len(entries))
	}
	if !entries[0].TakenAt.Equal(takenAt) {
		t.Errorf("TakenAt = %v, want %v", entries[0].TakenAt, takenAt)
	}
	if !entries[0].Subscription.ResetsAt.Equal(takenAt.Add(time.Hour)) {
		t.Errorf("ResetsAt = %v, want %v", entries[0].Subscription.ResetsAt, takenAt.Add(time.Hour))
	}
}
