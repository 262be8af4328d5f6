package treepatch

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/changeset"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/orgtree"
)

// Options controls how unresolvable references are treated while patching.
// The default (lenient) drops squad ids that no longer resolve against the
// directory, treating them as already-deleted squads; strict mode fails the
// patch instead.
type Options struct {
	StrictSquads bool
}

// Warning reports a tolerated inconsistency encountered while patching, such
// as a change targeting a user no longer present in the forest. Warnings
// never abort a preview; they let stale drafts stay viewable and editable.
type Warning struct {
	UserID  uuid.UUID `json:"user_id"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

const (
	WarnUserMissing  = "USER_MISSING"
	WarnSquadDropped = "SQUAD_DROPPED"
)

// ApplyChanges produces a new forest reflecting every pending change. The
// input forest is never mutated; an empty change set yields a structurally
// equal copy. A supervisor reassignment that targets the moved user or any
// of its descendants fails the whole patch with orgtree.ErrCycleDetected.
func ApplyChanges(
	forest orgtree.Forest,
	changes *changeset.ChangeSet,
	squadDirectory map[uuid.UUID]orgtree.Squad,
	opts Options,
) (orgtree.Forest, []Warning, error) {
	patched := forest.Clone()
	if changes == nil || changes.Len() == 0 {
		return patched, nil, nil
	}

	var warnings []Warning
	for _, change := range changes.All() {
		node := patched.Find(change.UserID)
		if node == nil {
			warnings = append(warnings, Warning{
				UserID:  change.UserID,
				Code:    WarnUserMissing,
				Message: fmt.Sprintf("user %s is no longer part of the organization", change.UserID),
			})
			continue
		}

		if err := applySupervisor(&patched, node, change); err != nil {
			return orgtree.Forest{}, nil, err
		}
		applyDepartment(node, change)
		applyRole(node, change)
		squadWarnings, err := applySquads(node, change, squadDirectory, opts)
		if err != nil {
			return orgtree.Forest{}, nil, err
		}
		warnings = append(warnings, squadWarnings...)
	}
	return patched, warnings, nil
}

func applySupervisor(patched *orgtree.Forest, node *orgtree.Node, change *changeset.Change) error {
	if change.NewSupervisorID == nil {
		return nil
	}
	newSupervisorID := *change.NewSupervisorID

	currentParent := parentOf(*patched, node.User.ID)
	if currentParent != nil && currentParent.User.ID == newSupervisorID {
		return nil
	}

	if node.User.ID == newSupervisorID || inSubtree(node, newSupervisorID) {
		return fmt.Errorf(
			"%w: cannot move %s under %s",
			orgtree.ErrCycleDetected, node.User.ID, newSupervisorID,
		)
	}

	detach(patched, node, currentParent)

	newParent := patched.Find(newSupervisorID)
	if newParent == nil {
		// Supervisor outside the forest: the node becomes a root.
		patched.Roots = append(patched.Roots, node)
	} else {
		newParent.Children = append(newParent.Children, node)
	}

	revised := ensureRevised(node)
	if !revised.Moved {
		revised.Moved = true
		if currentParent != nil {
			id := currentParent.User.ID
			revised.SupervisorID = &id
		}
	}
	node.User.SupervisorID = &newSupervisorID
	return nil
}

func applyDepartment(node *orgtree.Node, change *changeset.Change) {
	if change.NewDepartment == nil {
		return
	}
	revised := ensureRevised(node)
	if revised.Department == nil {
		prior := node.User.Department
		revised.Department = &prior
	}
	node.User.Department = *change.NewDepartment
}

func applyRole(node *orgtree.Node, change *changeset.Change) {
	if change.NewRole == nil {
		return
	}
	revised := ensureRevised(node)
	if revised.Role == nil {
		prior := node.User.Role
		revised.Role = &prior
	}
	node.User.Role = *change.NewRole
}

func applySquads(
	node *orgtree.Node,
	change *changeset.Change,
	squadDirectory map[uuid.UUID]orgtree.Squad,
	opts Options,
) ([]Warning, error) {
	if change.NewSquadIDs == nil {
		return nil, nil
	}

	var warnings []Warning
	resolved := make([]orgtree.Squad, 0, len(change.NewSquadIDs))
	for _, id := range change.NewSquadIDs {
		squad, ok := squadDirectory[id]
		if !ok {
			if opts.StrictSquads {
				return nil, fmt.Errorf("%w: %s", orgtree.ErrUnknownSquad, id)
			}
			warnings = append(warnings, Warning{
				UserID:  node.User.ID,
				Code:    WarnSquadDropped,
				Message: fmt.Sprintf("squad %s does not resolve and was dropped", id),
			})
			continue
		}
		resolved = append(resolved, squad)
	}

	revised := ensureRevised(node)
	if revised.SquadIDs == nil {
		revised.SquadIDs = node.User.SquadIDs()
		if revised.SquadIDs == nil {
			revised.SquadIDs = []uuid.UUID{}
		}
	}
	node.User.Squads = resolved
	return warnings, nil
}

func ensureRevised(node *orgtree.Node) *orgtree.Revisions {
	if node.Revised == nil {
		node.Revised = &orgtree.Revisions{}
	}
	return node.Revised
}

func parentOf(forest orgtree.Forest, userID uuid.UUID) *orgtree.Node {
	var parent *orgtree.Node
	forest.Walk(func(n *orgtree.Node) bool {
		for _, child := range n.Children {
			if child.User.ID == userID {
				parent = n
				return false
			}
		}
		return true
	})
	return parent
}

func inSubtree(root *orgtree.Node, candidate uuid.UUID) bool {
	found := false
	forest := orgtree.Forest{Roots: []*orgtree.Node{root}}
	forest.Walk(func(n *orgtree.Node) bool {
		if n.User.ID == candidate {
			found = true
			return false
		}
		return true
	})
	return found
}

func detach(forest *orgtree.Forest, node *orgtree.Node, parent *orgtree.Node) {
	if parent == nil {
		for i, root := range forest.Roots {
			if root == node {
				forest.Roots = append(forest.Roots[:i], forest.Roots[i+1:]...)
				return
			}
		}
		return
	}
	for i, child := range parent.Children {
		if child == node {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return
		}
	}
}
