// Package sqlite backs the session ledger with a SQLite database. The default
// DSN is an in-memory database, so like the memory backend nothing outlives
// the process; a file DSN can be configured when a scan needs to be inspected
// after the fact.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"mailledger/internal/core"

	_ "modernc.org/sqlite"
)

// MemoryDSN is the default session-scoped database.
const MemoryDSN = "file::memory:?cache=shared"

type Store struct {
	db *sql.DB
}

func New(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A second connection to an in-memory DSN would see an empty database,
	// so the pool is capped at one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Append implements ledger.Store.
func (s *Store) Append(ctx context.Context, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (amount_cents, source, occurred_on, subject, category)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Amount.Cents,
		string(e.Source),
		e.OccurredOn.Format(dateLayout),
		e.Subject,
		string(e.Category),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	id, _ := res.LastInsertId()
	slog.DebugContext(ctx, "Entry saved to SQLite",
		"id", id,
		"subject", e.Subject,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	return nil
}

// Snapshot implements ledger.Store. Rows come back ordered by rowid, which is
// insertion order.
func (s *Store) Snapshot(ctx context.Context) ([]core.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT amount_cents, source, occurred_on, subject, category
		 FROM entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		var (
			cents      int64
			source     string
			occurredOn string
			subject    string
			category   string
		)
		if err := rows.Scan(&cents, &source, &occurredOn, &subject, &category); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		day, err := time.Parse(dateLayout, occurredOn)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_on %q: %w", occurredOn, err)
		}
		entries = append(entries, core.Entry{
			Amount:     core.Money{Cents: cents},
			Source:     core.SourceKind(source),
			OccurredOn: core.DateOf(day),
			Subject:    subject,
			Category:   core.Category(category),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

const dateLayout = "2006-01-02"
