package amqp

import (
	"encoding/json"
	"time"

	"mailledger/internal/mail"
)

// ScanJob asks a worker to run one message through the extraction pipeline.
// It carries the full message plus any already-extracted attachment text, so
// the worker needs no access to the mailbox or to PDF bytes.
type ScanJob struct {
	Message         mail.Message `json:"message"`
	AttachmentTexts []string     `json:"attachment_texts,omitempty"`
	EnqueuedAt      time.Time    `json:"enqueued_at"`
}

func NewScanJob(msg mail.Message, attachmentTexts []string) *ScanJob {
	return &ScanJob{
		Message:         msg,
		AttachmentTexts: attachmentTexts,
		EnqueuedAt:      time.Now(),
	}
}

// ToJSON converts the job to JSON bytes
func (j *ScanJob) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// ScanJobFromJSON creates a job from JSON bytes
func ScanJobFromJSON(data []byte) (*ScanJob, error) {
	var job ScanJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
