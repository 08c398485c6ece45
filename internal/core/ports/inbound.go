package ports

import (
	"context"
	"io"

	"github.com/velardo/doccontrol/internal/core/domain"
)

// RevisionLifecycle is the inbound contract for revision state transitions.
type RevisionLifecycle interface {
	CreateRevision(ctx context.Context, req CreateRevisionRequest) (*domain.Revision, error)
	CancelRevision(ctx context.Context, revisionID, actorID int64) (*domain.Revision, error)
	SoftDeleteRevision(ctx context.Context, revisionID int64) error
	RestoreRevision(ctx context.Context, revisionID int64) error
	SoftDeleteDocument(ctx context.Context, documentID int64) error
	RestoreDocument(ctx context.Context, documentID int64) error
}

// CreateRevisionRequest carries a revision submission. Content may be nil for
// metadata-only submissions; DescriptionID/StepID override the values copied
// from the predecessor when a workflow decision is already available.
type CreateRevisionRequest struct {
	DocumentID    int64
	UploaderID    int64
	Filename      string
	Content       io.Reader
	DescriptionID *int64
	StepID        *int64
	Remarks       string
}

// WorkflowResolver decides the next workflow code after a review verdict.
type WorkflowResolver interface {
	Resolve(ctx context.Context, presetID, currentDescriptionID, currentStepID, reviewCodeID int64) (domain.Decision, error)
}

// PresetChecker validates preset sequence configuration for authoring tools.
type PresetChecker interface {
	ValidateSequence(ctx context.Context, presetID int64) ([]string, error)
}

// ReviewRecorder persists a verdict and returns the resulting decision.
type ReviewRecorder interface {
	RecordReview(ctx context.Context, req RecordReviewRequest) (domain.Decision, error)
}

type RecordReviewRequest struct {
	PresetID     int64
	RevisionID   int64
	ReviewCodeID int64
	ReviewerID   int64
	Remarks      string
}
