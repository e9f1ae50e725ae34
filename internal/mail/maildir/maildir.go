// Package maildir reads message fixtures from a local directory, one JSON
// file per message with attachment bytes in sidecar files. It is the default
// mail backend: no network, no credentials.
package maildir

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mailledger/internal/mail"
)

type Source struct {
	dir string
}

// messageFile is the on-disk shape of one message fixture.
type messageFile struct {
	Subject     string           `json:"subject"`
	Body        string           `json:"body"`
	ReceivedAt  string           `json:"received_at,omitempty"` // RFC 3339; empty = unknown
	Attachments []attachmentFile `json:"attachments,omitempty"`
}

type attachmentFile struct {
	ContentType string `json:"content_type"`
	File        string `json:"file"`
}

var _ mail.Source = (*Source)(nil)

func New(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat maildir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("maildir %s is not a directory", dir)
	}
	return &Source{dir: dir}, nil
}

// Messages lists every *.json message in the directory, sorted by file name
// so repeated scans discover messages in a stable order.
func (s *Source) Messages(ctx context.Context) ([]mail.Message, error) {
	names, err := s.messageNames()
	if err != nil {
		return nil, err
	}

	msgs := make([]mail.Message, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mf, err := s.readMessage(name)
		if err != nil {
			return nil, err
		}

		var receivedAt time.Time
		if mf.ReceivedAt != "" {
			receivedAt, err = time.Parse(time.RFC3339, mf.ReceivedAt)
			if err != nil {
				return nil, fmt.Errorf("parse received_at in %s: %w", name, err)
			}
		}

		msgs = append(msgs, mail.Message{
			ID:             name,
			Subject:        mf.Subject,
			Body:           mf.Body,
			ReceivedAt:     receivedAt,
			HasAttachments: len(mf.Attachments) > 0,
		})
	}
	return msgs, nil
}

// Attachments loads the sidecar files referenced by the message fixture.
func (s *Source) Attachments(_ context.Context, messageID string) ([]mail.Attachment, error) {
	mf, err := s.readMessage(messageID)
	if err != nil {
		return nil, err
	}

	atts := make([]mail.Attachment, 0, len(mf.Attachments))
	for _, af := range mf.Attachments {
		raw, err := os.ReadFile(filepath.Join(s.dir, af.File))
		if err != nil {
			return nil, fmt.Errorf("read attachment %s of %s: %w", af.File, messageID, err)
		}
		atts = append(atts, mail.Attachment{ContentType: af.ContentType, Raw: raw})
	}
	return atts, nil
}

func (s *Source) messageNames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read maildir %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *Source) readMessage(name string) (*messageFile, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read message %s: %w", name, err)
	}
	var mf messageFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("decode message %s: %w", name, err)
	}
	return &mf, nil
}
