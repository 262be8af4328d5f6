package orgtree

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// Assignable reports whether the role may be granted through a draft change.
// Promotion to admin is reserved for out-of-band administration.
func (r Role) Assignable() bool {
	return r == RoleEmployee || r == RoleSupervisor
}

// Squad is a named cross-cutting team grouping, independent of the
// supervisor hierarchy.
type Squad struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// User is a reference to an organization member. Users are owned by the org
// directory; the draft engine never mutates them directly.
type User struct {
	ID           uuid.UUID  `json:"id"`
	DisplayName  string     `json:"display_name"`
	Department   string     `json:"department,omitempty"`
	Role         Role       `json:"role"`
	Squads       []Squad    `json:"squads,omitempty"`
	SupervisorID *uuid.UUID `json:"supervisor_id,omitempty"`
}

// SquadIDs returns the ids of the user's squad memberships in order.
func (u User) SquadIDs() []uuid.UUID {
	if len(u.Squads) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(u.Squads))
	for _, s := range u.Squads {
		ids = append(ids, s.ID)
	}
	return ids
}
