package persistence

import (
	"github.com/iota-uz/orgchart/modules/orgchart/domain/changeset"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/draft"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/orgtree"
	"github.com/iota-uz/orgchart/modules/orgchart/infrastructure/persistence/models"
)

func toDomainUser(row *models.User, squads []orgtree.Squad) orgtree.User {
	department := ""
	if row.Department != nil {
		department = *row.Department
	}
	return orgtree.User{
		ID:           row.ID,
		DisplayName:  row.DisplayName,
		Department:   department,
		Role:         orgtree.Role(row.Role),
		Squads:       squads,
		SupervisorID: row.SupervisorID,
	}
}

func toDomainSquad(row *models.Squad) orgtree.Squad {
	return orgtree.Squad{
		ID:   row.ID,
		Name: row.Name,
	}
}

func toDomainDraft(row *models.Draft, changes []*changeset.Change) *draft.Draft {
	return &draft.Draft{
		TenantID:    row.TenantID,
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatorID:   row.CreatorID,
		Status:      draft.Status(row.Status),
		Changes:     changeset.FromChanges(changes),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		PublishedAt: row.PublishedAt,
	}
}

func toDomainChange(row *models.DraftChange) *changeset.Change {
	return &changeset.Change{
		UserID:               row.UserID,
		NewSupervisorID:      row.NewSupervisorID,
		NewDepartment:        row.NewDepartment,
		NewRole:              toDomainRole(row.NewRole),
		NewSquadIDs:          row.NewSquadIDs,
		OriginalSupervisorID: row.OriginalSupervisorID,
		OriginalDepartment:   row.OriginalDepartment,
		OriginalRole:         toDomainRole(row.OriginalRole),
		OriginalSquadIDs:     row.OriginalSquadIDs,
	}
}

func toDomainRole(role *string) *orgtree.Role {
	if role == nil {
		return nil
	}
	r := orgtree.Role(*role)
	return &r
}

func toDBRole(role *orgtree.Role) *string {
	if role == nil {
		return nil
	}
	s := string(*role)
	return &s
}
