package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// openTestStore opens an in-memory journal.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	entries := []Entry{
		{Op: "transcribe", Source: "file", Seq: 1, Outcome: OutcomeOK, Duration: 1500 * time.Millisecond, CreatedAt: now.Add(-2 * time.Minute)},
		{Op: "summary", Seq: 1, Outcome: OutcomeBackend, Error: "model failure", Duration: 200 * time.Millisecond, CreatedAt: now.Add(-time.Minute)},
		{Op: "answer", Seq: 3, Outcome: OutcomeTransport, Error: "connection refused", CreatedAt: now},
	}
	for _, e := range entries {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}

	if got[0].Op != "answer" || got[2].Op != "transcribe" {
		t.Errorf("order = %s, %s, %s; want newest first", got[0].Op, got[1].Op, got[2].Op)
	}
	if got[1].Error != "model failure" {
		t.Errorf("error = %q", got[1].Error)
	}
	if got[2].Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v, want 1.5s", got[2].Duration)
	}
	if got[2].Source != "file" || got[0].Seq != 3 {
		t.Errorf("entries = %+v", got)
	}
	if d := got[0].CreatedAt.Sub(now); d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("createdAt drift = %v", d)
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, Entry{Op: "summary", Seq: uint64(i + 1), Outcome: OutcomeOK}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d entries, want 2", len(got))
	}
}

func TestRecentEmpty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d entries, want 0", len(got))
	}
}

func TestCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, outcome := range []string{OutcomeOK, OutcomeOK, OutcomeDiscarded, OutcomeTransport} {
		if err := store.Record(ctx, Entry{Op: "answer", Outcome: outcome}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[OutcomeOK] != 2 || counts[OutcomeDiscarded] != 1 || counts[OutcomeTransport] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestOpenFileReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.sqlite")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Record(ctx, Entry{Op: "transcribe", Source: "url", Outcome: OutcomeOK}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Source != "url" {
		t.Errorf("entries after reopen = %+v", got)
	}
}
