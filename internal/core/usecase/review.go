package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/velardo/doccontrol/internal/core/domain"
	"github.com/velardo/doccontrol/internal/core/ports"
)

// ReviewUseCase records a reviewer's verdict against a revision and returns
// the rule engine's decision for the next workflow code. The caller applies
// that decision when creating the next revision.
type ReviewUseCase struct {
	revisions ports.RevisionStore
	reviews   ports.ReviewStore
	refs      ports.ReferenceResolver
	resolver  ports.WorkflowResolver
	now       func() time.Time
}

func NewReviewUseCase(
	revisions ports.RevisionStore,
	reviews ports.ReviewStore,
	refs ports.ReferenceResolver,
	resolver ports.WorkflowResolver,
) *ReviewUseCase {
	return &ReviewUseCase{
		revisions: revisions,
		reviews:   reviews,
		refs:      refs,
		resolver:  resolver,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ReviewUseCase) RecordReview(ctx context.Context, req ports.RecordReviewRequest) (domain.Decision, error) {
	rev, err := uc.revisions.GetByID(ctx, req.RevisionID)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("fetch revision: %w", err)
	}
	if rev.IsDeleted {
		return domain.Decision{}, domain.WrapError(domain.ErrNotFound, "record review", fmt.Errorf("revision %d is deleted", req.RevisionID))
	}
	if rev.DescriptionID == nil || rev.StepID == nil {
		return domain.Decision{}, domain.WrapError(domain.ErrInvalidInput, "record review", fmt.Errorf("revision %d has no workflow code", req.RevisionID))
	}
	if _, err := uc.refs.GetByID(ctx, domain.RefReviewCodes, req.ReviewCodeID); err != nil {
		return domain.Decision{}, fmt.Errorf("fetch review code: %w", err)
	}

	// Resolve before persisting so a misconfigured preset surfaces without a
	// dangling review row.
	decision, err := uc.resolver.Resolve(ctx, req.PresetID, *rev.DescriptionID, *rev.StepID, req.ReviewCodeID)
	if err != nil {
		return domain.Decision{}, err
	}

	review := &domain.Review{
		RevisionID:   req.RevisionID,
		ReviewCodeID: req.ReviewCodeID,
		ReviewerID:   req.ReviewerID,
		Remarks:      req.Remarks,
		CreatedAt:    uc.now(),
	}
	if err := uc.reviews.Insert(ctx, review); err != nil {
		return domain.Decision{}, fmt.Errorf("insert review: %w", err)
	}

	return decision, nil
}
