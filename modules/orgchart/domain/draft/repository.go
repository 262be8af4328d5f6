package draft

import (
	"context"

	"github.com/google/uuid"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/changeset"
	"github.com/iota-uz/orgchart/pkg/serrors"
)

var (
	ErrNotFound     = serrors.NewError("ORG_DRAFT_NOT_FOUND", "draft not found", "OrgChart.Errors.DraftNotFound")
	ErrInvalidState = serrors.NewError("ORG_DRAFT_INVALID_STATE", "operation not permitted in current draft status", "OrgChart.Errors.DraftInvalidState")
)

// Summary is a draft without its changes, as returned by list queries.
type Summary struct {
	Draft
	ChangeCount int `json:"change_count"`
}

type FindParams struct {
	Statuses []Status
	Limit    int
	Offset   int
	SortAsc  bool
}

// Repository is the DraftStore contract the engine requires from the
// surrounding system. Publish must be all-or-nothing: on failure the draft
// stays in StatusDraft and the authoritative organization data is unchanged.
type Repository interface {
	Create(ctx context.Context, d *Draft) (*Draft, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Draft, error)
	List(ctx context.Context, params FindParams) ([]*Summary, int64, error)
	Rename(ctx context.Context, id uuid.UUID, name string, description *string) error
	Delete(ctx context.Context, id uuid.UUID) error

	SaveChange(ctx context.Context, draftID uuid.UUID, change *changeset.Change) error
	DeleteChange(ctx context.Context, draftID uuid.UUID, userID uuid.UUID) error

	// Publish atomically applies every pending change to the authoritative
	// organization records and transitions the draft to StatusPublished.
	Publish(ctx context.Context, id uuid.UUID) (*Draft, error)

	// Archive transitions the draft to StatusArchived without applying it.
	Archive(ctx context.Context, id uuid.UUID) (*Draft, error)
}
