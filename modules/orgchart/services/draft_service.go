package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/changeset"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/draft"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/orgtree"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/treepatch"
	"github.com/iota-uz/orgchart/pkg/eventbus"
	"github.com/iota-uz/orgchart/pkg/serrors"
)

var ErrUserNotFound = serrors.NewError("ORG_USER_NOT_FOUND", "user not found in organization", "OrgChart.Errors.UserNotFound")

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// DraftService orchestrates the draft lifecycle: it folds edits into change
// sets, renders previews by patching the canonical forest, and delegates the
// atomic publish to the draft store. Concurrent mutations of one draft must
// be serialized by the caller or the store.
type DraftService struct {
	drafts    draft.Repository
	org       orgtree.Repository
	publisher eventbus.EventBus
	patchOpts treepatch.Options
}

func NewDraftService(
	drafts draft.Repository,
	org orgtree.Repository,
	publisher eventbus.EventBus,
) *DraftService {
	return &DraftService{
		drafts:    drafts,
		org:       org,
		publisher: publisher,
	}
}

// StrictSquads makes unresolvable squad references fail patches instead of
// being dropped with a warning.
func (s *DraftService) StrictSquads(strict bool) {
	s.patchOpts.StrictSquads = strict
}

type CreateDraftParams struct {
	Name        string
	Description *string
	CreatorID   uuid.UUID
}

func (s *DraftService) Create(ctx context.Context, params CreateDraftParams) (*draft.Draft, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, serrors.NewFieldRequiredError("name", "OrgChart.Drafts.Fields.name")
	}
	if params.CreatorID == uuid.Nil {
		return nil, serrors.NewFieldRequiredError("creator_id", "OrgChart.Drafts.Fields.creator_id")
	}

	d := &draft.Draft{
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		CreatorID:   params.CreatorID,
		Status:      draft.StatusDraft,
		Changes:     changeset.New(),
	}
	created, err := s.drafts.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(DraftCreatedEvent{Draft: *created})
	return created, nil
}

func (s *DraftService) Get(ctx context.Context, id uuid.UUID) (*draft.Draft, error) {
	return s.drafts.GetByID(ctx, id)
}

func (s *DraftService) List(ctx context.Context, params draft.FindParams) ([]*draft.Summary, int64, error) {
	params.Limit = clampLimit(params.Limit, defaultPageSize, maxPageSize)
	if params.Offset < 0 {
		params.Offset = 0
	}
	return s.drafts.List(ctx, params)
}

func (s *DraftService) Rename(ctx context.Context, id uuid.UUID, name string, description *string) error {
	if strings.TrimSpace(name) == "" {
		return serrors.NewFieldRequiredError("name", "OrgChart.Drafts.Fields.name")
	}
	d, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !d.Editable() {
		return draft.ErrInvalidState
	}
	return s.drafts.Rename(ctx, id, strings.TrimSpace(name), description)
}

// AddChange folds the given fields into the draft's change set. The target
// user's current attributes supply the original values captured on the first
// edit of each field. The merged change set is dry-run against the canonical
// forest so cycles are rejected before anything is persisted.
func (s *DraftService) AddChange(ctx context.Context, draftID uuid.UUID, fields changeset.Fields, userID uuid.UUID) (*changeset.Change, error) {
	d, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if !d.Editable() {
		return nil, draft.ErrInvalidState
	}

	users, err := s.org.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	var target *orgtree.User
	for i := range users {
		if users[i].ID == userID {
			target = &users[i]
			break
		}
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	candidate := d.ChangeSet().Clone()
	change, err := candidate.Upsert(*target, fields)
	if err != nil {
		return nil, err
	}

	forest, err := orgtree.BuildForest(users)
	if err != nil {
		return nil, err
	}
	directory, err := s.squadDirectory(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, err := treepatch.ApplyChanges(forest, candidate, directory, s.patchOpts); err != nil {
		return nil, err
	}

	if err := s.drafts.SaveChange(ctx, draftID, change); err != nil {
		return nil, err
	}
	s.publisher.Publish(ChangeAddedEvent{DraftID: draftID, Change: *change})
	return change, nil
}

func (s *DraftService) RemoveChange(ctx context.Context, draftID, userID uuid.UUID) error {
	d, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return err
	}
	if !d.Editable() {
		return draft.ErrInvalidState
	}
	if err := s.drafts.DeleteChange(ctx, draftID, userID); err != nil {
		return err
	}
	s.publisher.Publish(ChangeRemovedEvent{DraftID: draftID, UserID: userID})
	return nil
}

// Preview patches the canonical forest with the draft's pending changes.
// Unresolvable references surface as warnings so stale drafts remain
// viewable.
func (s *DraftService) Preview(ctx context.Context, draftID uuid.UUID) (orgtree.Forest, []treepatch.Warning, error) {
	d, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return orgtree.Forest{}, nil, err
	}
	users, err := s.org.GetUsers(ctx)
	if err != nil {
		return orgtree.Forest{}, nil, err
	}
	forest, err := orgtree.BuildForest(users)
	if err != nil {
		return orgtree.Forest{}, nil, err
	}
	directory, err := s.squadDirectory(ctx)
	if err != nil {
		return orgtree.Forest{}, nil, err
	}
	return treepatch.ApplyChanges(forest, d.ChangeSet(), directory, s.patchOpts)
}

// Publish applies the draft atomically through the store. On failure the
// draft stays in StatusDraft and no organizational data changes.
func (s *DraftService) Publish(ctx context.Context, draftID uuid.UUID) (*draft.Draft, error) {
	d, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.Status != draft.StatusDraft {
		return nil, draft.ErrInvalidState
	}
	published, err := s.drafts.Publish(ctx, draftID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(DraftPublishedEvent{Draft: *published})
	return published, nil
}

func (s *DraftService) Archive(ctx context.Context, draftID uuid.UUID) (*draft.Draft, error) {
	d, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.Status != draft.StatusDraft {
		return nil, draft.ErrInvalidState
	}
	archived, err := s.drafts.Archive(ctx, draftID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(DraftArchivedEvent{Draft: *archived})
	return archived, nil
}

// Delete removes a draft and all its changes. Only drafts still in
// StatusDraft may be deleted unless force is set (administrative override).
func (s *DraftService) Delete(ctx context.Context, draftID uuid.UUID, force bool) error {
	d, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return err
	}
	if d.Status != draft.StatusDraft && !force {
		return draft.ErrInvalidState
	}
	if err := s.drafts.Delete(ctx, draftID); err != nil {
		return err
	}
	s.publisher.Publish(DraftDeletedEvent{DraftID: draftID})
	return nil
}

func (s *DraftService) squadDirectory(ctx context.Context) (map[uuid.UUID]orgtree.Squad, error) {
	squads, err := s.org.GetSquads(ctx)
	if err != nil {
		return nil, err
	}
	directory := make(map[uuid.UUID]orgtree.Squad, len(squads))
	for _, squad := range squads {
		directory[squad.ID] = squad
	}
	return directory, nil
}

func clampLimit(limit, def, maxAllowed int) int {
	switch {
	case limit <= 0:
		return def
	case limit > maxAllowed:
		return maxAllowed
	default:
		return limit
	}
}
