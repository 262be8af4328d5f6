package orgtree

import (
	"github.com/google/uuid"
)

// Revisions records the pre-patch values of fields rewritten by a pending
// change. It exists only on patched copies of a forest so UIs can render
// diffs; it is never part of the canonical organization state.
type Revisions struct {
	Moved        bool        `json:"moved,omitempty"`
	SupervisorID *uuid.UUID  `json:"supervisor_id,omitempty"`
	Department   *string     `json:"department,omitempty"`
	Role         *Role       `json:"role,omitempty"`
	SquadIDs     []uuid.UUID `json:"squad_ids,omitempty"`
}

// Node wraps one user and its direct reports in order.
type Node struct {
	User     User       `json:"user"`
	Children []*Node    `json:"children,omitempty"`
	Revised  *Revisions `json:"revised,omitempty"`
}

// Forest is the set of root nodes representing the organization. Roots keep
// the order in which their users were supplied.
type Forest struct {
	Roots []*Node `json:"roots"`
}

// Find returns the node holding the given user id, or nil.
func (f Forest) Find(userID uuid.UUID) *Node {
	var found *Node
	f.Walk(func(n *Node) bool {
		if n.User.ID == userID {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits every node depth-first. The visitor returns false to stop.
func (f Forest) Walk(fn func(*Node) bool) {
	stack := make([]*Node, len(f.Roots))
	for i := range f.Roots {
		stack[len(f.Roots)-1-i] = f.Roots[i]
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}

// Size returns the number of nodes in the forest.
func (f Forest) Size() int {
	count := 0
	f.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Clone returns a structurally independent deep copy of the forest. Patch
// operations always clone first so callers keep an untouched canonical tree.
func (f Forest) Clone() Forest {
	roots := make([]*Node, 0, len(f.Roots))
	for _, root := range f.Roots {
		roots = append(roots, cloneNode(root))
	}
	return Forest{Roots: roots}
}

func cloneNode(n *Node) *Node {
	clone := &Node{User: cloneUser(n.User)}
	if n.Revised != nil {
		revised := *n.Revised
		revised.SquadIDs = append([]uuid.UUID(nil), n.Revised.SquadIDs...)
		clone.Revised = &revised
	}
	if len(n.Children) > 0 {
		clone.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			clone.Children = append(clone.Children, cloneNode(child))
		}
	}
	return clone
}

func cloneUser(u User) User {
	clone := u
	if u.SupervisorID != nil {
		id := *u.SupervisorID
		clone.SupervisorID = &id
	}
	if len(u.Squads) > 0 {
		clone.Squads = append([]Squad(nil), u.Squads...)
	}
	return clone
}
