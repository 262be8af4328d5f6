package draft

import (
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/changeset"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusPublished || s == StatusArchived
}

// Draft is a named proposal to reorganize part of the company. Changes may
// only be edited while the draft is in StatusDraft; publishing and archiving
// are one-way transitions.
type Draft struct {
	TenantID    uuid.UUID            `json:"tenant_id"`
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Description *string              `json:"description,omitempty"`
	CreatorID   uuid.UUID            `json:"creator_id"`
	Status      Status               `json:"status"`
	Changes     *changeset.ChangeSet `json:"-"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	PublishedAt *time.Time           `json:"published_at,omitempty"`
}

// Editable reports whether changes may still be added or removed.
func (d *Draft) Editable() bool {
	return d.Status == StatusDraft
}

// ChangeSet returns the draft's change set, lazily initialized so hydrated
// drafts without changes behave like empty ones.
func (d *Draft) ChangeSet() *changeset.ChangeSet {
	if d.Changes == nil {
		d.Changes = changeset.New()
	}
	return d.Changes
}
