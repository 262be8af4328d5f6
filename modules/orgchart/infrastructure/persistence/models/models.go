package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	DisplayName  string
	Department   *string
	Role         string
	SupervisorID *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Squad struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
}

type Draft struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Name        string
	Description *string
	CreatorID   uuid.UUID
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

type DraftChange struct {
	DraftID              uuid.UUID
	UserID               uuid.UUID
	NewSupervisorID      *uuid.UUID
	NewDepartment        *string
	NewRole              *string
	NewSquadIDs          []uuid.UUID
	OriginalSupervisorID *uuid.UUID
	OriginalDepartment   *string
	OriginalRole         *string
	OriginalSquadIDs     []uuid.UUID
	Position             int32
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
