package orgtree

import "context"

// Repository reads the canonical organization directory: members with their
// supervisor links, squads, and known department names. All queries are
// scoped to the tenant carried by the context.
type Repository interface {
	GetUsers(ctx context.Context) ([]User, error)
	GetSquads(ctx context.Context) ([]Squad, error)
	GetDepartments(ctx context.Context) ([]string, error)
}
