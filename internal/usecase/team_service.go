package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/team"
)

type TeamService struct {
	teams team.Repository
}

func NewTeamService(teams team.Repository) *TeamService {
	return &TeamService{teams: teams}
}

func (s *TeamService) List(ctx context.Context) ([]team.Team, error) {
	items, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return items, nil
}

func (s *TeamService) GetByID(ctx context.Context, teamID string) (team.Team, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	item, exists, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}

	return item, nil
}
