package services

import (
	"github.com/google/uuid"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/changeset"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/draft"
)

// DraftCreatedEvent is published whenever a draft is created.
type DraftCreatedEvent struct {
	Draft draft.Draft
}

// ChangeAddedEvent is published after a change is folded into a draft.
type ChangeAddedEvent struct {
	DraftID uuid.UUID
	Change  changeset.Change
}

// ChangeRemovedEvent is published after a pending change is removed.
type ChangeRemovedEvent struct {
	DraftID uuid.UUID
	UserID  uuid.UUID
}

// DraftPublishedEvent is published once a draft has been applied to the
// authoritative organization records.
type DraftPublishedEvent struct {
	Draft draft.Draft
}

// DraftArchivedEvent is published when a draft is shelved without applying.
type DraftArchivedEvent struct {
	Draft draft.Draft
}

// DraftDeletedEvent is published after a draft and its changes are removed.
type DraftDeletedEvent struct {
	DraftID uuid.UUID
}
