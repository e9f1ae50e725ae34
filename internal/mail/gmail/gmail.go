// Package gmail adapts a Gmail mailbox to the mail.Source port. Credentials
// are supplied through the environment; there is no interactive consent flow.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"mailledger/internal/mail"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const defaultMaxMessages = 50

type Client struct {
	svc         *gmailapi.Service
	user        string
	maxMessages int64
}

// Ensure interface conformance
var _ mail.Source = (*Client)(nil)

// NewFromEnv creates a Gmail client using environment variables.
// Optional: GMAIL_USER (default "me"), GMAIL_MAX_MESSAGES (default 50).
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS / ADC.
func NewFromEnv(ctx context.Context) (*Client, error) {
	user := strings.TrimSpace(os.Getenv("GMAIL_USER"))
	if user == "" {
		user = "me"
	}

	maxMessages := int64(defaultMaxMessages)
	if v := strings.TrimSpace(os.Getenv("GMAIL_MAX_MESSAGES")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid GMAIL_MAX_MESSAGES %q", v)
		}
		maxMessages = n
	}

	svc, err := newGmailService(ctx)
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}

	return &Client{svc: svc, user: user, maxMessages: maxMessages}, nil
}

func newGmailService(ctx context.Context) (*gmailapi.Service, error) {
	opts := []option.ClientOption{option.WithScopes(gmailapi.GmailReadonlyScope)}

	switch {
	case strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))))
	case strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")) != "":
		opts = append(opts, option.WithCredentialsFile(strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))))
	default:
		// Fall back to Application Default Credentials.
		slog.InfoContext(ctx, "No explicit Gmail credentials provided, using ADC")
	}

	return gmailapi.NewService(ctx, opts...)
}

// Messages lists the newest messages in the inbox and resolves each into the
// mail contract: subject, plain-text body, received timestamp, attachment flag.
func (c *Client) Messages(ctx context.Context) ([]mail.Message, error) {
	list, err := c.svc.Users.Messages.List(c.user).
		LabelIds("INBOX").
		MaxResults(c.maxMessages).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list inbox messages: %w", err)
	}

	msgs := make([]mail.Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		full, err := c.svc.Users.Messages.Get(c.user, ref.Id).
			Format("full").
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", ref.Id, err)
		}

		var receivedAt time.Time
		if full.InternalDate > 0 {
			receivedAt = time.UnixMilli(full.InternalDate).UTC()
		}

		msgs = append(msgs, mail.Message{
			ID:             full.Id,
			Subject:        headerValue(full.Payload, "Subject"),
			Body:           bodyText(full.Payload),
			ReceivedAt:     receivedAt,
			HasAttachments: hasAttachments(full.Payload),
		})
	}

	slog.InfoContext(ctx, "Listed Gmail messages", "count", len(msgs), "user", c.user)
	return msgs, nil
}

// Attachments fetches every named attachment of a message.
func (c *Client) Attachments(ctx context.Context, messageID string) ([]mail.Attachment, error) {
	full, err := c.svc.Users.Messages.Get(c.user, messageID).
		Format("full").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", messageID, err)
	}

	var atts []mail.Attachment
	for _, part := range flatten(full.Payload) {
		if part.Filename == "" || part.Body == nil {
			continue
		}

		var raw []byte
		switch {
		case part.Body.AttachmentId != "":
			body, err := c.svc.Users.Messages.Attachments.
				Get(c.user, messageID, part.Body.AttachmentId).
				Context(ctx).Do()
			if err != nil {
				return nil, fmt.Errorf("get attachment %s of %s: %w", part.Body.AttachmentId, messageID, err)
			}
			raw, err = decodeBody(body.Data)
			if err != nil {
				return nil, fmt.Errorf("decode attachment %s of %s: %w", part.Filename, messageID, err)
			}
		case part.Body.Data != "":
			raw, err = decodeBody(part.Body.Data)
			if err != nil {
				return nil, fmt.Errorf("decode inline attachment %s of %s: %w", part.Filename, messageID, err)
			}
		default:
			continue
		}

		atts = append(atts, mail.Attachment{ContentType: part.MimeType, Raw: raw})
	}
	return atts, nil
}

func headerValue(payload *gmailapi.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, h := range payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// bodyText concatenates every text/plain part of the message, in order.
func bodyText(payload *gmailapi.MessagePart) string {
	var chunks []string
	for _, part := range flatten(payload) {
		if part.Filename != "" || part.Body == nil || part.Body.Data == "" {
			continue
		}
		if part.MimeType != "text/plain" {
			continue
		}
		decoded, err := decodeBody(part.Body.Data)
		if err != nil {
			slog.Debug("Skipping undecodable body part", "mime_type", part.MimeType, "error", err)
			continue
		}
		chunks = append(chunks, string(decoded))
	}
	return strings.Join(chunks, " ")
}

func hasAttachments(payload *gmailapi.MessagePart) bool {
	for _, part := range flatten(payload) {
		if part.Filename != "" {
			return true
		}
	}
	return false
}

// flatten walks the MIME tree depth-first, leaves in document order.
func flatten(payload *gmailapi.MessagePart) []*gmailapi.MessagePart {
	if payload == nil {
		return nil
	}
	parts := []*gmailapi.MessagePart{payload}
	for _, child := range payload.Parts {
		parts = append(parts, flatten(child)...)
	}
	return parts
}

// decodeBody handles Gmail's URL-safe base64, padded or not.
func decodeBody(data string) ([]byte, error) {
	if raw, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return raw, nil
	}
	return base64.URLEncoding.DecodeString(data)
}
