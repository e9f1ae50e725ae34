package sqlite

import (
	"context"
	"testing"

	"mailledger/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	// A private in-memory database per test, not the shared default DSN.
	s, err := New("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []core.Entry{
		{
			Amount:     core.Money{Cents: 50000},
			Source:     core.SourceEmail,
			OccurredOn: core.NewDate(2024, 4, 10),
			Subject:    "Q2 Revenue Report",
			Category:   core.Revenue,
		},
		{
			Amount:     core.Money{Cents: 12000},
			Source:     core.SourceDocument,
			OccurredOn: core.NewDate(2024, 4, 12),
			Subject:    "Travel expense receipt",
			Category:   core.Expenses,
		},
	}
	for i, e := range entries {
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap) != len(entries) {
		t.Fatalf("snapshot length = %d, want %d", len(snap), len(entries))
	}
	for i, want := range entries {
		got := snap[i]
		if got.Amount != want.Amount || got.Source != want.Source ||
			got.Subject != want.Subject || got.Category != want.Category ||
			!got.OccurredOn.Equal(want.OccurredOn) {
			t.Errorf("snapshot[%d] = %+v, want %+v", i, got, want)
		}
	}
}

func TestAppendRejectsInvalidEntry(t *testing.T) {
	s := newTestStore(t)
	bad := core.Entry{
		Amount:     core.Money{Cents: 100},
		Source:     "sms",
		OccurredOn: core.NewDate(2024, 1, 1),
		Subject:    "whatever",
		Category:   core.Revenue,
	}
	if err := s.Append(context.Background(), bad); err == nil {
		t.Fatal("expected validation error for invalid source kind")
	}
}

func TestDuplicateEntriesAreKept(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := core.Entry{
		Amount:     core.Money{Cents: 999},
		Source:     core.SourceEmail,
		OccurredOn: core.NewDate(2024, 6, 1),
		Subject:    "Rescanned message",
		Category:   core.Uncategorized,
	}
	if err := s.Append(ctx, e); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, e); err != nil {
		t.Fatal(err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 2 {
		t.Errorf("re-ingesting the same message appends again: got %d entries, want 2", len(snap))
	}
}
