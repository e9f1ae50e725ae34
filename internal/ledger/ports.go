// Package ledger defines the session ledger port implemented by the storage
// backends.
package ledger

import (
	"context"

	"mailledger/internal/core"
)

// Store is the append-only ledger held for the lifetime of a session. There
// is no remove or update operation: entries are written once and only read
// back as snapshots.
type Store interface {
	// Append adds one classified entry to the ledger. Appends may arrive
	// from interleaved scans; no entry is ever lost to interleaving.
	Append(ctx context.Context, e core.Entry) error

	// Snapshot returns a copy of all entries in insertion order, safe to
	// iterate while further appends occur.
	Snapshot(ctx context.Context) ([]core.Entry, error)
}
