package changeset

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/orgtree"
)

// ChangeSet holds the pending edits of one draft, at most one Change per
// user. Iteration order follows first insertion so previews and publishes
// stay deterministic.
type ChangeSet struct {
	changes map[uuid.UUID]*Change
	order   []uuid.UUID
}

func New() *ChangeSet {
	return &ChangeSet{changes: map[uuid.UUID]*Change{}}
}

// FromChanges rebuilds a ChangeSet from persisted changes, keeping their
// order. Later duplicates for the same user replace earlier ones.
func FromChanges(changes []*Change) *ChangeSet {
	cs := New()
	for _, c := range changes {
		if c == nil {
			continue
		}
		if _, ok := cs.changes[c.UserID]; !ok {
			cs.order = append(cs.order, c.UserID)
		}
		cs.changes[c.UserID] = c.clone()
	}
	return cs
}

// Upsert merges the given fields into the user's pending change, creating
// one when absent. Originals are captured from current state only the first
// time a field is touched; later edits overwrite the requested value but
// keep the first-captured original. Role values outside employee/supervisor
// are rejected.
func (cs *ChangeSet) Upsert(current orgtree.User, fields Fields) (*Change, error) {
	if fields.NewRole != nil && !fields.NewRole.Assignable() {
		return nil, fmt.Errorf("%w: %q", orgtree.ErrInvalidRole, *fields.NewRole)
	}

	change, ok := cs.changes[current.ID]
	if !ok {
		change = &Change{UserID: current.ID}
		cs.changes[current.ID] = change
		cs.order = append(cs.order, current.ID)
	}

	if fields.NewSupervisorID != nil {
		if change.NewSupervisorID == nil {
			change.OriginalSupervisorID = cloneID(current.SupervisorID)
		}
		change.NewSupervisorID = cloneID(fields.NewSupervisorID)
	}
	if fields.NewDepartment != nil {
		if change.NewDepartment == nil {
			if current.Department != "" {
				change.OriginalDepartment = cloneString(&current.Department)
			}
		}
		change.NewDepartment = cloneString(fields.NewDepartment)
	}
	if fields.NewRole != nil {
		if change.NewRole == nil {
			role := current.Role
			change.OriginalRole = &role
		}
		change.NewRole = cloneRole(fields.NewRole)
	}
	if fields.NewSquadIDs != nil {
		if change.NewSquadIDs == nil {
			change.OriginalSquadIDs = current.SquadIDs()
		}
		change.NewSquadIDs = cloneIDs(fields.NewSquadIDs)
	}

	return change.clone(), nil
}

// Remove deletes the user's pending change. Removing an absent change is a
// no-op, not an error.
func (cs *ChangeSet) Remove(userID uuid.UUID) {
	if _, ok := cs.changes[userID]; !ok {
		return
	}
	delete(cs.changes, userID)
	for i, id := range cs.order {
		if id == userID {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			break
		}
	}
}

// Get returns a copy of the user's pending change, or nil.
func (cs *ChangeSet) Get(userID uuid.UUID) *Change {
	change, ok := cs.changes[userID]
	if !ok {
		return nil
	}
	return change.clone()
}

func (cs *ChangeSet) Len() int {
	return len(cs.changes)
}

// All returns copies of every pending change in insertion order.
func (cs *ChangeSet) All() []*Change {
	out := make([]*Change, 0, len(cs.order))
	for _, id := range cs.order {
		out = append(out, cs.changes[id].clone())
	}
	return out
}

func (cs *ChangeSet) Clone() *ChangeSet {
	return FromChanges(cs.All())
}
