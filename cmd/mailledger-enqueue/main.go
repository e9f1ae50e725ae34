// Command mailledger-enqueue reads a mailbox and publishes one scan job per
// message for the ingest worker, extracting attachment text on the way so the
// worker never needs mailbox access.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	appamqp "mailledger/internal/amqp"
	"mailledger/internal/config"
	applog "mailledger/internal/log"
	"mailledger/internal/mail"
	"mailledger/internal/mail/gmail"
	"mailledger/internal/mail/maildir"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New("mailledger-enqueue", slog.LevelInfo)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		source mail.Source
		err    error
	)
	switch cfg.MailBackend {
	case "gmail":
		source, err = gmail.NewFromEnv(ctx)
	default:
		source, err = maildir.New(cfg.MaildirPath)
	}
	if err != nil {
		logger.Error("Failed to initialize mail backend", "error", err, "backend", cfg.MailBackend)
		os.Exit(1)
	}

	amqpClient, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	msgs, err := source.Messages(ctx)
	if err != nil {
		logger.Error("Failed to list messages", "error", err)
		os.Exit(1)
	}

	extractor := mail.PlainText{}
	published := 0
	for _, msg := range msgs {
		var texts []string
		if msg.HasAttachments {
			atts, err := source.Attachments(ctx, msg.ID)
			if err != nil {
				logger.Error("Skipping message with unreadable attachments", "message_id", msg.ID, "error", err)
				continue
			}
			for _, att := range atts {
				if !mail.IsPDF(att.ContentType) {
					continue
				}
				text, err := extractor.ExtractText(ctx, att.ContentType, att.Raw)
				if err != nil {
					logger.Error("Skipping undecodable attachment", "message_id", msg.ID, "error", err)
					continue
				}
				texts = append(texts, text)
			}
		}

		if err := amqpClient.PublishScan(ctx, appamqp.NewScanJob(msg, texts)); err != nil {
			logger.Error("Failed to publish scan job", "message_id", msg.ID, "error", err)
			os.Exit(1)
		}
		published++
	}

	logger.Info("Enqueued scan jobs", "messages", len(msgs), "published", published)
}
