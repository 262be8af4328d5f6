package orgtree

import (
	"fmt"

	"github.com/google/uuid"
)

// BuildForest assembles the organization forest from a flat list of users.
// Each user becomes a child of its supervisor's node; users whose supervisor
// is absent from the input (or unset) become roots. Children and roots keep
// input order. Supervisor links that loop back on themselves fail with
// ErrCycleDetected instead of producing a malformed tree.
func BuildForest(users []User) (Forest, error) {
	byID := make(map[uuid.UUID]User, len(users))
	for _, u := range users {
		if _, ok := byID[u.ID]; ok {
			return Forest{}, fmt.Errorf("%w: %s", ErrDuplicateUser, u.ID)
		}
		byID[u.ID] = u
	}

	if err := checkSupervisorCycles(users, byID); err != nil {
		return Forest{}, err
	}

	nodes := make(map[uuid.UUID]*Node, len(users))
	for _, u := range users {
		nodes[u.ID] = &Node{User: cloneUser(u)}
	}

	forest := Forest{}
	for _, u := range users {
		node := nodes[u.ID]
		if u.SupervisorID == nil {
			forest.Roots = append(forest.Roots, node)
			continue
		}
		parent, ok := nodes[*u.SupervisorID]
		if !ok {
			// Supervisor not part of the input set: treat as a root
			// rather than dropping the subtree.
			forest.Roots = append(forest.Roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return forest, nil
}

func checkSupervisorCycles(users []User, byID map[uuid.UUID]User) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[uuid.UUID]int, len(users))

	for _, u := range users {
		id := u.ID
		var chain []uuid.UUID
		for {
			if state[id] == done {
				break
			}
			if state[id] == visiting {
				return fmt.Errorf("%w: supervisor chain loops at %s", ErrCycleDetected, id)
			}
			state[id] = visiting
			chain = append(chain, id)

			current, ok := byID[id]
			if !ok || current.SupervisorID == nil {
				break
			}
			next := *current.SupervisorID
			if _, known := byID[next]; !known {
				break
			}
			id = next
		}
		for _, visited := range chain {
			state[visited] = done
		}
	}
	return nil
}
