// Package mail defines the boundary contracts with the mailbox and
// document-text collaborators. The scan pipeline only ever sees these types;
// where the messages actually come from is an adapter concern.
package mail

import (
	"context"
	"strings"
	"time"
)

// Message is the mail-collaborator input contract. A zero ReceivedAt means
// the timestamp is unknown and the processing date is used instead; an empty
// Subject is replaced by a sentinel downstream.
type Message struct {
	ID             string
	Subject        string
	Body           string
	ReceivedAt     time.Time
	HasAttachments bool
}

// Attachment carries raw attachment bytes and their declared content type.
// The bytes are opaque to the core; only the document-text collaborator
// interprets them.
type Attachment struct {
	ContentType string
	Raw         []byte
}

// Ports for inbound adapters.
type (
	// Source lists a mailbox's messages and fetches their attachments.
	Source interface {
		Messages(ctx context.Context) ([]Message, error)
		Attachments(ctx context.Context, messageID string) ([]Attachment, error)
	}

	// TextExtractor turns attachment bytes into plain text. PDF decoding
	// happens behind this port, outside the core.
	TextExtractor interface {
		ExtractText(ctx context.Context, contentType string, raw []byte) (string, error)
	}
)

// IsPDF reports whether a content type declares a PDF document.
func IsPDF(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct == "application/pdf" || ct == "application/x-pdf"
}

// PlainText is a passthrough TextExtractor for fixtures and tests: it treats
// the raw bytes as already-extracted text.
type PlainText struct{}

func (PlainText) ExtractText(_ context.Context, _ string, raw []byte) (string, error) {
	return string(raw), nil
}
