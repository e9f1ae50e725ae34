// Package scan runs the extraction pipeline over mailbox messages: it pulls
// currency literals out of message bodies and attachment text, classifies
// them by subject, and appends the resulting entries to the session ledger.
package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mailledger/internal/classify"
	"mailledger/internal/core"
	"mailledger/internal/extract"
	"mailledger/internal/ledger"
	"mailledger/internal/log"
	"mailledger/internal/mail"
	"mailledger/internal/report"
)

// Scanner owns one ledger for the session. Callers hold a reference and pass
// messages in; there is no ambient shared state.
type Scanner struct {
	store ledger.Store
	log   *log.Logger

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// Totals summarizes one batch scan.
type Totals struct {
	Messages    int
	Attachments int
	Entries     int
	Skipped     int // malformed amount tokens dropped
	Failures    int // messages or attachments that could not be fetched
}

func New(store ledger.Store, logger *log.Logger) *Scanner {
	return &Scanner{
		store: store,
		log:   logger,
		now:   time.Now,
	}
}

// Ingest scans one message body and appends every discovered amount to the
// ledger. Malformed tokens are skipped and counted, never fatal; a body with
// no amounts is a valid empty result. It returns the number of entries
// appended.
func (s *Scanner) Ingest(ctx context.Context, msg mail.Message) (int, error) {
	n, _, err := s.ingest(ctx, msg, msg.Body, core.SourceEmail)
	return n, err
}

// IngestAttachmentText scans already-extracted attachment text in the context
// of its message. The text arrives from the document-text collaborator; this
// method never touches raw PDF bytes.
func (s *Scanner) IngestAttachmentText(ctx context.Context, msg mail.Message, text string) (int, error) {
	n, _, err := s.ingest(ctx, msg, text, core.SourceDocument)
	return n, err
}

func (s *Scanner) ingest(ctx context.Context, msg mail.Message, text string, kind core.SourceKind) (int, int, error) {
	subject := msg.Subject
	if subject == "" {
		subject = core.UnknownSubject
	}

	occurredOn := core.DateOf(msg.ReceivedAt)
	if msg.ReceivedAt.IsZero() {
		occurredOn = core.DateOf(s.now())
	}

	category := classify.Categorize(subject)
	amounts, skipped := extract.ParseAll(text)
	if skipped > 0 {
		s.log.WarnContext(ctx, "Dropped malformed amount tokens",
			"message_id", msg.ID,
			"skipped", skipped)
	}

	appended := 0
	for _, amt := range amounts {
		entry := core.Entry{
			Amount:     amt,
			Source:     kind,
			OccurredOn: occurredOn,
			Subject:    subject,
			Category:   category,
		}
		if err := s.store.Append(ctx, entry); err != nil {
			return appended, skipped, fmt.Errorf("append entry for message %s: %w", msg.ID, err)
		}
		appended++
	}

	if appended > 0 {
		s.log.InfoContext(ctx, "Ingested entries",
			"message_id", msg.ID,
			"source", kind,
			"category", category,
			"entries", appended)
	}
	return appended, skipped, nil
}

// IngestAll scans a whole mailbox: message bodies and, for messages that
// carry attachments, the text of every PDF attachment. Messages are scanned
// concurrently; the ledger serializes the appends, so the total entry count
// is independent of completion order. A message or attachment that fails to
// fetch is logged and counted, and the rest of the batch continues.
func (s *Scanner) IngestAll(ctx context.Context, src mail.Source, extractor mail.TextExtractor, concurrency int) (Totals, error) {
	msgs, err := src.Messages(ctx)
	if err != nil {
		return Totals{}, fmt.Errorf("list messages: %w", err)
	}

	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu     sync.Mutex
		totals = Totals{Messages: len(msgs)}
	)
	add := func(f func(*Totals)) {
		mu.Lock()
		defer mu.Unlock()
		f(&totals)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, msg := range msgs {
		msg := msg
		g.Go(func() error {
			n, skipped, err := s.ingest(gctx, msg, msg.Body, core.SourceEmail)
			add(func(t *Totals) {
				t.Entries += n
				t.Skipped += skipped
			})
			if err != nil {
				s.log.ErrorContext(gctx, "Message scan failed", "message_id", msg.ID, "error", err)
				add(func(t *Totals) { t.Failures++ })
				return nil
			}

			if !msg.HasAttachments {
				return nil
			}

			atts, err := src.Attachments(gctx, msg.ID)
			if err != nil {
				s.log.ErrorContext(gctx, "Attachment fetch failed", "message_id", msg.ID, "error", err)
				add(func(t *Totals) { t.Failures++ })
				return nil
			}

			for _, att := range atts {
				if !mail.IsPDF(att.ContentType) {
					continue
				}
				text, err := extractor.ExtractText(gctx, att.ContentType, att.Raw)
				if err != nil {
					s.log.ErrorContext(gctx, "Text extraction failed",
						"message_id", msg.ID,
						"content_type", att.ContentType,
						"error", err)
					add(func(t *Totals) { t.Failures++ })
					continue
				}

				n, skipped, err := s.ingest(gctx, msg, text, core.SourceDocument)
				add(func(t *Totals) {
					t.Attachments++
					t.Entries += n
					t.Skipped += skipped
				})
				if err != nil {
					s.log.ErrorContext(gctx, "Attachment scan failed", "message_id", msg.ID, "error", err)
					add(func(t *Totals) { t.Failures++ })
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return totals, err
	}

	s.log.InfoContext(ctx, "Mailbox scan complete",
		"messages", totals.Messages,
		"attachments", totals.Attachments,
		"entries", totals.Entries,
		"skipped_tokens", totals.Skipped,
		"failures", totals.Failures)
	return totals, nil
}

// GenerateReport resolves the period containing the reference instant and
// builds a report from the ledger as it stands right now. A report requested
// mid-scan reflects whatever has been appended so far.
func (s *Scanner) GenerateReport(ctx context.Context, kind report.PeriodKind, ref time.Time) (report.Document, error) {
	period, err := report.ResolvePeriod(kind, ref)
	if err != nil {
		return report.Document{}, err
	}

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return report.Document{}, fmt.Errorf("ledger snapshot: %w", err)
	}

	return report.Build(snapshot, period), nil
}
