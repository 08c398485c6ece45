package domain

import "time"

type RevisionEventType string

const (
	EventRevisionCreated    RevisionEventType = "revision.created"
	EventRevisionSuperseded RevisionEventType = "revision.superseded"
	EventRevisionCancelled  RevisionEventType = "revision.cancelled"
	EventRevisionRestored   RevisionEventType = "revision.restored"
)

// RevisionEvent is published after a lifecycle transition commits. Consumers
// (notification delivery and friends) live outside this service.
type RevisionEvent struct {
	Type           RevisionEventType `json:"type"`
	DocumentID     int64             `json:"document_id"`
	RevisionID     int64             `json:"revision_id"`
	SequenceNumber string            `json:"sequence_number"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

// TransmittalLine is one row of a transmittal sheet: a document's current
// active revision with its workflow code.
type TransmittalLine struct {
	DocumentNumber  string
	DocumentTitle   string
	SequenceNumber  string
	DescriptionCode string
	StepCode        string
}
