package domain

import (
	"fmt"
	"strconv"
	"time"
)

type RevisionStatus string

const (
	RevisionActive     RevisionStatus = "active"
	RevisionSuperseded RevisionStatus = "superseded"
	RevisionCancelled  RevisionStatus = "cancelled"
)

// Document is a logical document identity owning a sequence of revisions.
type Document struct {
	ID           int64     `json:"id"`
	Number       string    `json:"number"`
	Title        string    `json:"title"`
	ProjectID    int64     `json:"project_id"`
	DisciplineID int64     `json:"discipline_id"`
	TypeID       int64     `json:"type_id"`
	LanguageID   *int64    `json:"language_id,omitempty"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
}

// Revision is one submitted version of a document's content. Status and the
// delete flags are the only fields mutated after creation.
type Revision struct {
	ID             int64          `json:"id"`
	DocumentID     int64          `json:"document_id"`
	SequenceNumber string         `json:"sequence_number"`
	Status         RevisionStatus `json:"status"`
	DescriptionID  *int64         `json:"description_id,omitempty"`
	StepID         *int64         `json:"step_id,omitempty"`
	ContentRef     string         `json:"content_ref,omitempty"`
	UploaderID     int64          `json:"uploader_id"`
	Remarks        string         `json:"remarks,omitempty"`
	IsDeleted      bool           `json:"is_deleted"`
	// DeletedViaDocument marks delete flags set by a document-level cascade,
	// so restoring the document does not resurrect independently deleted rows.
	DeletedViaDocument bool      `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
}

// Review is a reviewer's verdict recorded against a revision.
type Review struct {
	ID           int64     `json:"id"`
	RevisionID   int64     `json:"revision_id"`
	ReviewCodeID int64     `json:"review_code_id"`
	ReviewerID   int64     `json:"reviewer_id"`
	Remarks      string    `json:"remarks,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PadSequence renders n in the zero-padded two-digit form used for sequence
// numbers and step codes ("01", "02", ...).
func PadSequence(n int) string {
	return fmt.Sprintf("%02d", n)
}

// NextSequenceNumber computes the number following prev. A fresh document
// starts at "01"; an unparsable predecessor falls back to "02" rather than
// failing the upload.
func NextSequenceNumber(prev string) string {
	if prev == "" {
		return "01"
	}
	n, err := strconv.Atoi(prev)
	if err != nil {
		return "02"
	}
	return PadSequence(n + 1)
}
