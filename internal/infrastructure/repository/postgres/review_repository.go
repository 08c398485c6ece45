package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/velardo/doccontrol/internal/core/domain"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Insert(ctx context.Context, review *domain.Review) error {
	err := r.db.QueryRowContext(ctx, `
INSERT INTO document_reviews (revision_id, review_code_id, reviewer_id, remarks, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`, review.RevisionID, review.ReviewCodeID, review.ReviewerID, review.Remarks, review.CreatedAt).Scan(&review.ID)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}
