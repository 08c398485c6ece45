package ports

import (
	"context"
	"io"

	"github.com/velardo/doccontrol/internal/core/domain"
)

// RevisionTx exposes the revision reads and writes available inside one
// per-document transaction.
type RevisionTx interface {
	// LatestNonDeleted returns the most recently created non-deleted revision,
	// or nil when the document has none.
	LatestNonDeleted(ctx context.Context, documentID int64) (*domain.Revision, error)
	// LatestActive returns the document's current active revision, or nil.
	LatestActive(ctx context.Context, documentID int64) (*domain.Revision, error)
	Insert(ctx context.Context, rev *domain.Revision) error
	UpdateStatus(ctx context.Context, revisionID int64, status domain.RevisionStatus) error
}

// RevisionStore persists revision rows. InDocumentTx serializes concurrent
// writers against the same document; any error from fn aborts the whole
// transaction with no partial state.
type RevisionStore interface {
	InDocumentTx(ctx context.Context, documentID int64, fn func(ctx context.Context, tx RevisionTx) error) error
	GetByID(ctx context.Context, revisionID int64) (*domain.Revision, error)
	ListByDocument(ctx context.Context, documentID int64, includeDeleted bool) ([]domain.Revision, error)
	SetDeleted(ctx context.Context, revisionID int64, deleted bool) error
	ListActiveByProject(ctx context.Context, projectID int64) ([]domain.TransmittalLine, error)
}

// DocumentStore persists document identities. Soft delete and restore cascade
// to the document's revisions inside the same transaction.
type DocumentStore interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, documentID int64) (*domain.Document, error)
	SoftDelete(ctx context.Context, documentID int64) error
	Restore(ctx context.Context, documentID int64) error
}

// ReferenceResolver looks up reference vocabularies by id and by exact code.
type ReferenceResolver interface {
	GetByID(ctx context.Context, kind domain.ReferenceKind, id int64) (*domain.ReferenceEntry, error)
	GetByCode(ctx context.Context, kind domain.ReferenceKind, code string) (*domain.ReferenceEntry, error)
	ListActive(ctx context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntry, error)
}

// RuleStore loads preset configuration. Rules come back sorted by priority
// then insertion order, with review code lists already deserialized.
type RuleStore interface {
	GetPreset(ctx context.Context, presetID int64) (*domain.WorkflowPreset, error)
	ListRules(ctx context.Context, presetID int64) ([]domain.PresetRule, error)
	ListSequences(ctx context.Context, presetID int64) ([]domain.PresetSequenceEntry, error)
}

// ReviewStore persists review verdicts.
type ReviewStore interface {
	Insert(ctx context.Context, review *domain.Review) error
}

// EventPublisher emits revision lifecycle events for external consumers.
type EventPublisher interface {
	PublishRevisionEvent(ctx context.Context, event domain.RevisionEvent) error
}

// ContentStorage stores submitted revision content.
type ContentStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
