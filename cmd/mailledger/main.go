package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mailledger/internal/config"
	applog "mailledger/internal/log"
	"mailledger/internal/ledger"
	"mailledger/internal/ledger/memory"
	"mailledger/internal/ledger/sqlite"
	"mailledger/internal/mail"
	"mailledger/internal/mail/gmail"
	"mailledger/internal/mail/maildir"
	"mailledger/internal/report"
	"mailledger/internal/scan"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New("mailledger", slog.LevelInfo)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, closeStore, err := newStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize ledger backend", "error", err, "backend", cfg.LedgerBackend)
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("Initialized ledger backend", "backend", cfg.LedgerBackend)

	source, err := newSource(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize mail backend", "error", err, "backend", cfg.MailBackend)
		os.Exit(1)
	}
	logger.Info("Initialized mail backend", "backend", cfg.MailBackend)

	scanner := scan.New(store, logger.WithComponent("scan"))

	totals, err := scanner.IngestAll(ctx, source, mail.PlainText{}, cfg.ScanConcurrency)
	if err != nil {
		logger.Error("Mailbox scan failed", "error", err)
		os.Exit(1)
	}

	doc, err := scanner.GenerateReport(ctx, cfg.PeriodKind(), time.Now())
	if err != nil {
		logger.Error("Report generation failed", "error", err)
		os.Exit(1)
	}

	printReport(doc, totals)
}

func newStore(cfg *config.Config) (ledger.Store, func(), error) {
	switch cfg.LedgerBackend {
	case "sqlite":
		s, err := sqlite.New(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return memory.New(), func() {}, nil
	}
}

func newSource(ctx context.Context, cfg *config.Config) (mail.Source, error) {
	switch cfg.MailBackend {
	case "gmail":
		return gmail.NewFromEnv(ctx)
	default:
		return maildir.New(cfg.MaildirPath)
	}
}

func printReport(doc report.Document, totals scan.Totals) {
	fmt.Printf("Financial report for %s\n", doc.Period.Label)
	fmt.Printf("(scanned %d messages, %d attachments; %d entries, %d failures)\n\n",
		totals.Messages, totals.Attachments, totals.Entries, totals.Failures)

	fmt.Printf("  Assets        %12s\n", doc.TotalAssets)
	fmt.Printf("  Liabilities   %12s\n", doc.TotalLiabilities)
	fmt.Printf("  Equity        %12s\n", doc.TotalEquity)
	fmt.Printf("  Revenue       %12s\n", doc.TotalRevenue)
	fmt.Printf("  Expenses      %12s\n", doc.TotalExpenses)
	fmt.Printf("  Net income    %12s\n\n", doc.NetIncome)

	combined := report.Chronological(doc)
	if len(combined) == 0 {
		fmt.Println("No entries in this period.")
		return
	}

	fmt.Println("Entries (newest first):")
	for _, e := range combined {
		fmt.Printf("  %s  %-13s %10s  %s\n",
			e.OccurredOn.Format("2006-01-02"), e.Category, e.Amount, e.Subject)
	}
}
