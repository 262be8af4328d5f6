package dtos

import (
	"github.com/google/uuid"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/changeset"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/orgtree"
	"github.com/iota-uz/orgchart/pkg/constants"
)

type CreateDraftDTO struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
	CreatorID   string  `json:"creator_id" validate:"required,uuid"`
}

func (d *CreateDraftDTO) Ok() error {
	return constants.Validate.Struct(d)
}

type RenameDraftDTO struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
}

func (d *RenameDraftDTO) Ok() error {
	return constants.Validate.Struct(d)
}

type ChangeDTO struct {
	UserID          string   `json:"user_id" validate:"required,uuid"`
	NewSupervisorID *string  `json:"new_supervisor_id,omitempty" validate:"omitempty,uuid"`
	NewDepartment   *string  `json:"new_department,omitempty"`
	NewRole         *string  `json:"new_role,omitempty" validate:"omitempty,oneof=employee supervisor"`
	NewSquadIDs     []string `json:"new_squad_ids,omitempty" validate:"omitempty,dive,uuid"`
}

func (d *ChangeDTO) Ok() error {
	return constants.Validate.Struct(d)
}

// Fields converts the validated DTO into change fields.
func (d *ChangeDTO) Fields() (changeset.Fields, error) {
	fields := changeset.Fields{
		NewDepartment: d.NewDepartment,
	}
	if d.NewSupervisorID != nil {
		id, err := uuid.Parse(*d.NewSupervisorID)
		if err != nil {
			return changeset.Fields{}, err
		}
		fields.NewSupervisorID = &id
	}
	if d.NewRole != nil {
		role := orgtree.Role(*d.NewRole)
		fields.NewRole = &role
	}
	if d.NewSquadIDs != nil {
		ids := make([]uuid.UUID, 0, len(d.NewSquadIDs))
		for _, raw := range d.NewSquadIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return changeset.Fields{}, err
			}
			ids = append(ids, id)
		}
		fields.NewSquadIDs = ids
	}
	return fields, nil
}
