package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/orgtree"
	"github.com/iota-uz/orgchart/modules/orgchart/infrastructure/persistence/models"
	"github.com/iota-uz/orgchart/pkg/composables"
)

type OrgRepository struct{}

func NewOrgRepository() orgtree.Repository {
	return &OrgRepository{}
}

func (r *OrgRepository) GetUsers(ctx context.Context) ([]orgtree.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, tenant_id, display_name, department, role, supervisor_id, created_at, updated_at
		FROM org_users
		WHERE tenant_id = $1
		ORDER BY created_at, id
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userRows []models.User
	for rows.Next() {
		var row models.User
		if err := rows.Scan(
			&row.ID,
			&row.TenantID,
			&row.DisplayName,
			&row.Department,
			&row.Role,
			&row.SupervisorID,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		userRows = append(userRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memberships, err := r.squadMemberships(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	users := make([]orgtree.User, 0, len(userRows))
	for i := range userRows {
		users = append(users, toDomainUser(&userRows[i], memberships[userRows[i].ID]))
	}
	return users, nil
}

func (r *OrgRepository) GetSquads(ctx context.Context) ([]orgtree.Squad, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, tenant_id, name
		FROM org_squads
		WHERE tenant_id = $1
		ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var squads []orgtree.Squad
	for rows.Next() {
		var row models.Squad
		if err := rows.Scan(&row.ID, &row.TenantID, &row.Name); err != nil {
			return nil, err
		}
		squads = append(squads, toDomainSquad(&row))
	}
	return squads, rows.Err()
}

func (r *OrgRepository) GetDepartments(ctx context.Context) ([]string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT DISTINCT department
		FROM org_users
		WHERE tenant_id = $1 AND department IS NOT NULL AND department <> ''
		ORDER BY department
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []string
	for rows.Next() {
		var department string
		if err := rows.Scan(&department); err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}
	return departments, rows.Err()
}

func (r *OrgRepository) squadMemberships(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID][]orgtree.Squad, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT us.user_id, s.id, s.tenant_id, s.name
		FROM org_user_squads us
		JOIN org_squads s ON s.id = us.squad_id
		WHERE s.tenant_id = $1
		ORDER BY us.user_id, us.position
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := map[uuid.UUID][]orgtree.Squad{}
	for rows.Next() {
		var userID uuid.UUID
		var row models.Squad
		if err := rows.Scan(&userID, &row.ID, &row.TenantID, &row.Name); err != nil {
			return nil, err
		}
		memberships[userID] = append(memberships[userID], toDomainSquad(&row))
	}
	return memberships, rows.Err()
}
