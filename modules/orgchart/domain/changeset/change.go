package changeset

import (
	"github.com/google/uuid"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/orgtree"
)

// Fields carries the requested edits of one upsert. A nil field means "no
// change requested for this attribute". NewSquadIDs is a full replacement
// set, not a delta; a non-nil empty slice clears all memberships.
type Fields struct {
	NewSupervisorID *uuid.UUID
	NewDepartment   *string
	NewRole         *orgtree.Role
	NewSquadIDs     []uuid.UUID
}

// Change is a single user's pending edits plus the original values captured
// when each field was first touched. Original values are only meaningful for
// fields whose New counterpart is set: OriginalSupervisorID of nil then means
// the user had no supervisor, and a nil OriginalDepartment means none was
// assigned.
type Change struct {
	UserID               uuid.UUID     `json:"user_id"`
	NewSupervisorID      *uuid.UUID    `json:"new_supervisor_id,omitempty"`
	NewDepartment        *string       `json:"new_department,omitempty"`
	NewRole              *orgtree.Role `json:"new_role,omitempty"`
	NewSquadIDs          []uuid.UUID   `json:"new_squad_ids,omitempty"`
	OriginalSupervisorID *uuid.UUID    `json:"original_supervisor_id,omitempty"`
	OriginalDepartment   *string       `json:"original_department,omitempty"`
	OriginalRole         *orgtree.Role `json:"original_role,omitempty"`
	OriginalSquadIDs     []uuid.UUID   `json:"original_squad_ids,omitempty"`
}

// Empty reports whether the change requests nothing at all.
func (c *Change) Empty() bool {
	return c.NewSupervisorID == nil &&
		c.NewDepartment == nil &&
		c.NewRole == nil &&
		c.NewSquadIDs == nil
}

// SupervisorUnchanged reports whether the requested supervisor equals the
// captured original. Callers use the *Unchanged helpers to avoid submitting
// no-op changes; the engine tolerates them either way.
func (c *Change) SupervisorUnchanged() bool {
	if c.NewSupervisorID == nil {
		return true
	}
	return c.OriginalSupervisorID != nil && *c.OriginalSupervisorID == *c.NewSupervisorID
}

func (c *Change) DepartmentUnchanged() bool {
	if c.NewDepartment == nil {
		return true
	}
	original := ""
	if c.OriginalDepartment != nil {
		original = *c.OriginalDepartment
	}
	return original == *c.NewDepartment
}

func (c *Change) RoleUnchanged() bool {
	if c.NewRole == nil {
		return true
	}
	return c.OriginalRole != nil && *c.OriginalRole == *c.NewRole
}

// SquadsUnchanged compares the requested squad set against the original as
// unordered sets.
func (c *Change) SquadsUnchanged() bool {
	if c.NewSquadIDs == nil {
		return true
	}
	return sameSquadSet(c.OriginalSquadIDs, c.NewSquadIDs)
}

// NoOp reports whether every requested field matches its original value.
func (c *Change) NoOp() bool {
	return c.SupervisorUnchanged() &&
		c.DepartmentUnchanged() &&
		c.RoleUnchanged() &&
		c.SquadsUnchanged()
}

func (c *Change) clone() *Change {
	clone := *c
	clone.NewSupervisorID = cloneID(c.NewSupervisorID)
	clone.NewDepartment = cloneString(c.NewDepartment)
	clone.NewRole = cloneRole(c.NewRole)
	clone.NewSquadIDs = cloneIDs(c.NewSquadIDs)
	clone.OriginalSupervisorID = cloneID(c.OriginalSupervisorID)
	clone.OriginalDepartment = cloneString(c.OriginalDepartment)
	clone.OriginalRole = cloneRole(c.OriginalRole)
	clone.OriginalSquadIDs = cloneIDs(c.OriginalSquadIDs)
	return &clone
}

func sameSquadSet(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uuid.UUID]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	return true
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneRole(r *orgtree.Role) *orgtree.Role {
	if r == nil {
		return nil
	}
	v := *r
	return &v
}

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return nil
	}
	return append([]uuid.UUID{}, ids...)
}
