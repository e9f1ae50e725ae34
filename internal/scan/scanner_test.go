package scan

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"mailledger/internal/core"
	"mailledger/internal/ledger/memory"
	"mailledger/internal/log"
	"mailledger/internal/mail"
	"mailledger/internal/report"
)

type fakeSource struct {
	messages    []mail.Message
	attachments map[string][]mail.Attachment
	attErr      error
}

func (f *fakeSource) Messages(context.Context) ([]mail.Message, error) {
	return f.messages, nil
}

func (f *fakeSource) Attachments(_ context.Context, id string) ([]mail.Attachment, error) {
	if f.attErr != nil {
		return nil, f.attErr
	}
	return f.attachments[id], nil
}

func newTestScanner() (*Scanner, *memory.Store) {
	store := memory.New()
	s := New(store, log.New("scan-test", slog.LevelError))
	s.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return s, store
}

func TestIngestClassifiesAndDatesEntries(t *testing.T) {
	s, store := newTestScanner()
	ctx := context.Background()

	msg := mail.Message{
		ID:         "m1",
		Subject:    "Q2 Revenue Report",
		Body:       "We recognized $500.00 and $1,250.00 this quarter.",
		ReceivedAt: time.Date(2024, 4, 10, 16, 45, 0, 0, time.UTC),
	}
	n, err := s.Ingest(ctx, msg)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n != 2 {
		t.Fatalf("appended = %d, want 2", n)
	}

	snap, _ := store.Snapshot(ctx)
	for i, e := range snap {
		if e.Category != core.Revenue {
			t.Errorf("entry %d category = %v, want revenue", i, e.Category)
		}
		if e.Source != core.SourceEmail {
			t.Errorf("entry %d source = %v, want email", i, e.Source)
		}
		if !e.OccurredOn.Equal(core.NewDate(2024, 4, 10)) {
			t.Errorf("entry %d date = %v, want 2024-04-10 (received date, time discarded)", i, e.OccurredOn)
		}
	}
	if snap[0].Amount.Cents != 50000 || snap[1].Amount.Cents != 125000 {
		t.Errorf("amounts = %d, %d; want 50000, 125000", snap[0].Amount.Cents, snap[1].Amount.Cents)
	}
}

func TestIngestDefaultsMissingFields(t *testing.T) {
	s, store := newTestScanner()
	ctx := context.Background()

	// No subject, no received timestamp: the scan must still succeed.
	n, err := s.Ingest(ctx, mail.Message{ID: "m2", Body: "misc charge $42.00"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n != 1 {
		t.Fatalf("appended = %d, want 1", n)
	}

	snap, _ := store.Snapshot(ctx)
	e := snap[0]
	if e.Subject != core.UnknownSubject {
		t.Errorf("Subject = %q, want %q", e.Subject, core.UnknownSubject)
	}
	if !e.OccurredOn.Equal(core.NewDate(2024, 5, 1)) {
		t.Errorf("OccurredOn = %v, want processing date 2024-05-01", e.OccurredOn)
	}
	if e.Category != core.Uncategorized {
		t.Errorf("Category = %v, want uncategorized", e.Category)
	}
}

func TestIngestEmptyBodyIsNotAnError(t *testing.T) {
	s, _ := newTestScanner()
	n, err := s.Ingest(context.Background(), mail.Message{ID: "m3", Subject: "hello", Body: "no amounts here"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n != 0 {
		t.Errorf("appended = %d, want 0", n)
	}
}

func TestIngestAttachmentTextUsesDocumentSource(t *testing.T) {
	s, store := newTestScanner()
	ctx := context.Background()

	msg := mail.Message{ID: "m4", Subject: "Equipment invoice", ReceivedAt: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)}
	n, err := s.IngestAttachmentText(ctx, msg, "invoice total $3,499.99")
	if err != nil {
		t.Fatalf("IngestAttachmentText: %v", err)
	}
	if n != 1 {
		t.Fatalf("appended = %d, want 1", n)
	}

	snap, _ := store.Snapshot(ctx)
	if snap[0].Source != core.SourceDocument {
		t.Errorf("Source = %v, want document", snap[0].Source)
	}
	if snap[0].Category != core.Assets {
		t.Errorf("Category = %v, want assets", snap[0].Category)
	}
}

func TestIngestAllScansBodiesAndPDFAttachments(t *testing.T) {
	s, store := newTestScanner()
	ctx := context.Background()

	src := &fakeSource{
		messages: []mail.Message{
			{ID: "a", Subject: "Sales update", Body: "booked $100.00", ReceivedAt: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)},
			{ID: "b", Subject: "Cost report", Body: "spent $40.00 and $1,23", HasAttachments: true,
				ReceivedAt: time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC)},
			{ID: "c", Subject: "FYI", Body: "nothing financial"},
		},
		attachments: map[string][]mail.Attachment{
			"b": {
				{ContentType: "application/pdf", Raw: []byte("statement line $60.00")},
				{ContentType: "image/png", Raw: []byte("$999.00 hidden in an image")},
			},
		},
	}

	totals, err := s.IngestAll(ctx, src, mail.PlainText{}, 4)
	if err != nil {
		t.Fatalf("IngestAll: %v", err)
	}
	if totals.Messages != 3 {
		t.Errorf("Messages = %d, want 3", totals.Messages)
	}
	// Only the PDF attachment is scanned; the image is ignored.
	if totals.Attachments != 1 {
		t.Errorf("Attachments = %d, want 1", totals.Attachments)
	}
	if totals.Entries != 3 {
		t.Errorf("Entries = %d, want 3", totals.Entries)
	}
	if totals.Failures != 0 {
		t.Errorf("Failures = %d, want 0", totals.Failures)
	}

	if got := store.Len(); got != 3 {
		t.Errorf("ledger length = %d, want 3", got)
	}
}

func TestIngestAllTotalsIndependentOfCompletionOrder(t *testing.T) {
	ctx := context.Background()

	var msgs []mail.Message
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		msgs = append(msgs, mail.Message{
			ID:         id,
			Subject:    "Payment batch " + id,
			Body:       "charged $10.00, then $20.00",
			ReceivedAt: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		})
	}
	src := &fakeSource{messages: msgs}

	for _, concurrency := range []int{1, 4, 8} {
		s, store := newTestScanner()
		totals, err := s.IngestAll(ctx, src, mail.PlainText{}, concurrency)
		if err != nil {
			t.Fatalf("IngestAll(concurrency=%d): %v", concurrency, err)
		}
		if totals.Entries != 16 || store.Len() != 16 {
			t.Errorf("concurrency %d: entries = %d, ledger = %d, want 16",
				concurrency, totals.Entries, store.Len())
		}
	}
}

func TestIngestAllSurvivesAttachmentFailure(t *testing.T) {
	s, store := newTestScanner()
	src := &fakeSource{
		messages: []mail.Message{
			{ID: "x", Subject: "Loan payment", Body: "paid $75.00", HasAttachments: true},
			{ID: "y", Subject: "Sales", Body: "sold $30.00"},
		},
		attErr: errors.New("mailbox unavailable"),
	}

	totals, err := s.IngestAll(context.Background(), src, mail.PlainText{}, 2)
	if err != nil {
		t.Fatalf("IngestAll must not fail the batch: %v", err)
	}
	if totals.Failures != 1 {
		t.Errorf("Failures = %d, want 1", totals.Failures)
	}
	if store.Len() != 2 {
		t.Errorf("body entries must survive the attachment failure, got %d", store.Len())
	}
}

func TestGenerateReportEndToEnd(t *testing.T) {
	s, _ := newTestScanner()
	ctx := context.Background()

	ingest := []mail.Message{
		{ID: "r", Subject: "April revenue", Body: "collected $500.00",
			ReceivedAt: time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "e", Subject: "Office expense", Body: "paid $120.00",
			ReceivedAt: time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC)},
	}
	for _, msg := range ingest {
		if _, err := s.Ingest(ctx, msg); err != nil {
			t.Fatal(err)
		}
	}

	doc, err := s.GenerateReport(ctx, report.Quarterly, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}

	if doc.Period.Label != "Q2 2024" {
		t.Errorf("Label = %q, want Q2 2024", doc.Period.Label)
	}
	if doc.TotalRevenue.Cents != 50000 {
		t.Errorf("TotalRevenue = %d, want 50000", doc.TotalRevenue.Cents)
	}
	if doc.TotalExpenses.Cents != 12000 {
		t.Errorf("TotalExpenses = %d, want 12000", doc.TotalExpenses.Cents)
	}
	if doc.NetIncome.Cents != 38000 {
		t.Errorf("NetIncome = %d, want 38000", doc.NetIncome.Cents)
	}
	for _, cat := range []core.Category{core.Assets, core.Liabilities, core.Equity} {
		if doc.Subtotals[cat].Cents != 0 {
			t.Errorf("subtotal %v = %d, want 0", cat, doc.Subtotals[cat].Cents)
		}
	}
}

func TestGenerateReportRejectsUnknownKind(t *testing.T) {
	s, _ := newTestScanner()
	_, err := s.GenerateReport(context.Background(), "weekly", time.Now())
	if !errors.Is(err, report.ErrInvalidPeriodKind) {
		t.Fatalf("expected ErrInvalidPeriodKind, got %v", err)
	}
}
