package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/orgtree"
)

// OrgService exposes the canonical organization state: the current forest
// and the squad/department directories used to resolve draft changes.
type OrgService struct {
	repo orgtree.Repository
}

func NewOrgService(repo orgtree.Repository) *OrgService {
	return &OrgService{repo: repo}
}

// GetOrgTree builds the canonical forest from the directory. Consumers must
// re-fetch it after a successful publish rather than trust a local preview.
func (s *OrgService) GetOrgTree(ctx context.Context) (orgtree.Forest, error) {
	users, err := s.repo.GetUsers(ctx)
	if err != nil {
		return orgtree.Forest{}, err
	}
	return orgtree.BuildForest(users)
}

func (s *OrgService) GetSquads(ctx context.Context) ([]orgtree.Squad, error) {
	return s.repo.GetSquads(ctx)
}

// SquadDirectory returns squads indexed by id for patch resolution.
func (s *OrgService) SquadDirectory(ctx context.Context) (map[uuid.UUID]orgtree.Squad, error) {
	squads, err := s.repo.GetSquads(ctx)
	if err != nil {
		return nil, err
	}
	directory := make(map[uuid.UUID]orgtree.Squad, len(squads))
	for _, squad := range squads {
		directory[squad.ID] = squad
	}
	return directory, nil
}

func (s *OrgService) GetDepartments(ctx context.Context) ([]string, error) {
	return s.repo.GetDepartments(ctx)
}
