// Package worker runs the queue-driven ingest loop: scan jobs arrive over
// AMQP and are fed through the scanner into the session ledger.
package worker

import (
	"context"
	"fmt"
	"time"

	"mailledger/internal/amqp"
	"mailledger/internal/log"
	"mailledger/internal/report"
	"mailledger/internal/scan"
)

type IngestWorker struct {
	scanner *scan.Scanner
	log     *log.Logger
}

func NewIngestWorker(scanner *scan.Scanner, logger *log.Logger) *IngestWorker {
	return &IngestWorker{
		scanner: scanner,
		log:     logger,
	}
}

// HandleScanJob ingests one job: the message body first, then each block of
// attachment text. Returning an error requeues the job, so the ledger append
// path is the only failure that propagates; empty scans succeed quietly.
func (w *IngestWorker) HandleScanJob(ctx context.Context, job *amqp.ScanJob) error {
	entries, err := w.scanner.Ingest(ctx, job.Message)
	if err != nil {
		return fmt.Errorf("ingest message %s: %w", job.Message.ID, err)
	}

	for i, text := range job.AttachmentTexts {
		n, err := w.scanner.IngestAttachmentText(ctx, job.Message, text)
		if err != nil {
			return fmt.Errorf("ingest attachment %d of message %s: %w", i, job.Message.ID, err)
		}
		entries += n
	}

	w.log.InfoContext(ctx, "Scan job processed",
		"message_id", job.Message.ID,
		"attachments", len(job.AttachmentTexts),
		"entries", entries,
		"enqueued_at", job.EnqueuedAt.Format(time.RFC3339))

	return nil
}

// LogReport builds the current report for the period containing now and logs
// its totals. Used by the periodic ticker so operators can watch the ledger
// fill up without asking for a full report.
func (w *IngestWorker) LogReport(ctx context.Context, kind report.PeriodKind) error {
	doc, err := w.scanner.GenerateReport(ctx, kind, time.Now())
	if err != nil {
		return fmt.Errorf("generate %s report: %w", kind, err)
	}

	w.log.InfoContext(ctx, "Ledger report",
		"period", doc.Period.Label,
		"revenue", doc.TotalRevenue.String(),
		"expenses", doc.TotalExpenses.String(),
		"assets", doc.TotalAssets.String(),
		"liabilities", doc.TotalLiabilities.String(),
		"equity", doc.TotalEquity.String(),
		"net_income", doc.NetIncome.String())

	return nil
}
