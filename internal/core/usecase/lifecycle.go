package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/velardo/doccontrol/internal/core/domain"
	"github.com/velardo/doccontrol/internal/core/ports"
)

// RevisionLifecycleUseCase owns creation, supersession, cancellation,
// restoration and numbering of a document's revisions.
type RevisionLifecycleUseCase struct {
	documents ports.DocumentStore
	revisions ports.RevisionStore
	storage   ports.ContentStorage
	events    ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewRevisionLifecycleUseCase(
	documents ports.DocumentStore,
	revisions ports.RevisionStore,
	storage ports.ContentStorage,
	events ports.EventPublisher,
	logger *slog.Logger,
) *RevisionLifecycleUseCase {
	return &RevisionLifecycleUseCase{
		documents: documents,
		revisions: revisions,
		storage:   storage,
		events:    events,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateRevision submits a new revision. The read-latest, supersede and
// insert steps run inside one per-document transaction so the single-active
// invariant holds under concurrent submissions.
func (uc *RevisionLifecycleUseCase) CreateRevision(ctx context.Context, req ports.CreateRevisionRequest) (*domain.Revision, error) {
	doc, err := uc.documents.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if doc.IsDeleted {
		return nil, domain.WrapError(domain.ErrNotFound, "create revision", fmt.Errorf("document %d is deleted", req.DocumentID))
	}

	contentRef, err := uc.saveContent(ctx, req)
	if err != nil {
		return nil, err
	}

	var created *domain.Revision
	var superseded *domain.Revision
	err = uc.revisions.InDocumentTx(ctx, req.DocumentID, func(ctx context.Context, tx ports.RevisionTx) error {
		latest, err := tx.LatestNonDeleted(ctx, req.DocumentID)
		if err != nil {
			return fmt.Errorf("fetch latest revision: %w", err)
		}

		rev := &domain.Revision{
			DocumentID:     req.DocumentID,
			SequenceNumber: nextNumber(latest),
			Status:         domain.RevisionActive,
			ContentRef:     contentRef,
			UploaderID:     req.UploaderID,
			Remarks:        req.Remarks,
			CreatedAt:      uc.now(),
		}
		applyWorkflowCode(rev, latest, req)

		active, err := tx.LatestActive(ctx, req.DocumentID)
		if err != nil {
			return fmt.Errorf("fetch active revision: %w", err)
		}
		if active != nil {
			if err := tx.UpdateStatus(ctx, active.ID, domain.RevisionSuperseded); err != nil {
				return fmt.Errorf("supersede revision %d: %w", active.ID, err)
			}
			superseded = active
		}

		if err := tx.Insert(ctx, rev); err != nil {
			return fmt.Errorf("insert revision: %w", err)
		}
		created = rev
		return nil
	})
	if err != nil {
		return nil, err
	}

	if superseded != nil {
		uc.publish(ctx, domain.EventRevisionSuperseded, superseded)
	}
	uc.publish(ctx, domain.EventRevisionCreated, created)
	return created, nil
}

// nextNumber applies the numbering rules: fresh document starts at "01", a
// cancelled predecessor is retried under the same number, anything else
// increments.
func nextNumber(latest *domain.Revision) string {
	if latest == nil {
		return "01"
	}
	if latest.Status == domain.RevisionCancelled {
		return latest.SequenceNumber
	}
	return domain.NextSequenceNumber(latest.SequenceNumber)
}

// applyWorkflowCode copies the workflow code from the predecessor unless the
// caller already has a decision from the rule engine.
func applyWorkflowCode(rev *domain.Revision, latest *domain.Revision, req ports.CreateRevisionRequest) {
	if req.DescriptionID != nil || req.StepID != nil {
		rev.DescriptionID = req.DescriptionID
		rev.StepID = req.StepID
		return
	}
	if latest != nil {
		rev.DescriptionID = latest.DescriptionID
		rev.StepID = latest.StepID
	}
}

// CancelRevision voids a submission. Only the document's current latest
// active revision may be cancelled.
func (uc *RevisionLifecycleUseCase) CancelRevision(ctx context.Context, revisionID, actorID int64) (*domain.Revision, error) {
	rev, err := uc.revisions.GetByID(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("fetch revision: %w", err)
	}
	if rev.IsDeleted {
		return nil, domain.WrapError(domain.ErrNotFound, "cancel revision", fmt.Errorf("revision %d is deleted", revisionID))
	}
	if rev.Status == domain.RevisionCancelled {
		return nil, domain.WrapError(domain.ErrInvalidTransition, "cancel revision", fmt.Errorf("revision %d is already cancelled", revisionID))
	}

	err = uc.revisions.InDocumentTx(ctx, rev.DocumentID, func(ctx context.Context, tx ports.RevisionTx) error {
		active, err := tx.LatestActive(ctx, rev.DocumentID)
		if err != nil {
			return fmt.Errorf("fetch active revision: %w", err)
		}
		if active == nil {
			return domain.WrapError(domain.ErrNoActiveRevision, "cancel revision", fmt.Errorf("document %d", rev.DocumentID))
		}
		if active.ID != rev.ID {
			return domain.WrapError(domain.ErrInvalidTransition, "cancel revision", errors.New("only the latest active revision may be cancelled"))
		}
		return tx.UpdateStatus(ctx, rev.ID, domain.RevisionCancelled)
	})
	if err != nil {
		return nil, err
	}

	rev.Status = domain.RevisionCancelled
	uc.publish(ctx, domain.EventRevisionCancelled, rev)
	return rev, nil
}

// SoftDeleteRevision toggles the delete flag without touching status.
func (uc *RevisionLifecycleUseCase) SoftDeleteRevision(ctx context.Context, revisionID int64) error {
	if err := uc.revisions.SetDeleted(ctx, revisionID, true); err != nil {
		return fmt.Errorf("soft delete revision: %w", err)
	}
	return nil
}

func (uc *RevisionLifecycleUseCase) RestoreRevision(ctx context.Context, revisionID int64) error {
	if err := uc.revisions.SetDeleted(ctx, revisionID, false); err != nil {
		return fmt.Errorf("restore revision: %w", err)
	}
	rev, err := uc.revisions.GetByID(ctx, revisionID)
	if err == nil {
		uc.publish(ctx, domain.EventRevisionRestored, rev)
	}
	return nil
}

// SoftDeleteDocument cascades the delete flag to the document's revisions in
// the same transaction.
func (uc *RevisionLifecycleUseCase) SoftDeleteDocument(ctx context.Context, documentID int64) error {
	if err := uc.documents.SoftDelete(ctx, documentID); err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	return nil
}

// RestoreDocument clears only the revision delete flags set by the document
// cascade; independently deleted revisions stay deleted.
func (uc *RevisionLifecycleUseCase) RestoreDocument(ctx context.Context, documentID int64) error {
	if err := uc.documents.Restore(ctx, documentID); err != nil {
		return fmt.Errorf("restore document: %w", err)
	}
	return nil
}

func (uc *RevisionLifecycleUseCase) saveContent(ctx context.Context, req ports.CreateRevisionRequest) (string, error) {
	if req.Content == nil {
		return "", nil
	}
	key := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(req.Filename))
	if err := uc.storage.Save(ctx, key, req.Content); err != nil {
		return "", fmt.Errorf("save revision content: %w", err)
	}
	return key, nil
}

// publish is fire-and-log: event loss never fails a committed transition.
func (uc *RevisionLifecycleUseCase) publish(ctx context.Context, eventType domain.RevisionEventType, rev *domain.Revision) {
	if uc.events == nil || rev == nil {
		return
	}
	event := domain.RevisionEvent{
		Type:           eventType,
		DocumentID:     rev.DocumentID,
		RevisionID:     rev.ID,
		SequenceNumber: rev.SequenceNumber,
		OccurredAt:     uc.now(),
	}
	if err := uc.events.PublishRevisionEvent(ctx, event); err != nil {
		uc.logger.Warn("revision_event_publish_failed",
			"type", string(eventType),
			"document_id", rev.DocumentID,
			"revision_id", rev.ID,
			"error", err,
		)
	}
}
