package memory

import (
	"context"
	"sync"

	"mailledger/internal/core"
)

// Store keeps the session ledger in a mutex-guarded slice. It is the default
// backend: nothing outlives the process.
type Store struct {
	mu      sync.Mutex
	entries []core.Entry
}

func New() *Store {
	return &Store{}
}

// Append stores the entry after validation. Duplicate entries from repeated
// scans of the same message are kept as-is; deduplication is not a ledger
// concern.
func (s *Store) Append(_ context.Context, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

// Snapshot returns a copy of the ledger in insertion order. The copy is
// taken under the lock, so a snapshot observed mid-scan is a consistent
// prefix of the eventual full ledger.
func (s *Store) Snapshot(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Entry(nil), s.entries...), nil
}

// Len reports the current number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
