// internal/models/document.go
package models

import "time"

// VerificationStatus is the per-document lifecycle position.
type VerificationStatus string

const (
	DocAbsent     VerificationStatus = "absent"
	DocProcessing VerificationStatus = "processing"
	DocVerified   VerificationStatus = "verified"
	DocRejected   VerificationStatus = "rejected"
)

// FileRef identifies an uploaded artifact. Content is never inspected; the
// simulated check keys off the name only.
type FileRef struct {
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
}

// VerificationResult is the verdict for one upload-and-check cycle.
type VerificationResult struct {
	Status          VerificationStatus `json:"status"`
	ExtractedFields map[string]string  `json:"extractedFields,omitempty"`
	Notes           []string           `json:"notes,omitempty"`
	CompletedAt     time.Time          `json:"completedAt,omitempty"`
}

// UploadedDocument tracks one document slot, keyed by a fixed document-type
// id such as "businessLicense". AttemptNumber is monotonic per id and resets
// only when the document is fully cleared.
type UploadedDocument struct {
	DocID         string              `json:"docId"`
	File          *FileRef            `json:"file,omitempty"`
	AttemptNumber int                 `json:"attemptNumber"`
	Verification  *VerificationResult `json:"verification,omitempty"`
}

// Status reports the lifecycle state, defaulting to absent when nothing has
// been attached or the verdict is still pending.
func (d *UploadedDocument) Status() VerificationStatus {
	if d == nil || d.File == nil {
		return DocAbsent
	}
	if d.Verification == nil {
		return DocProcessing
	}
	return d.Verification.Status
}
