package projects

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) Create(ctx context.Context, ownerID, name string) (Project, error) {
	if s == nil || s.Repo == nil {
		return Project{}, errors.New("projects service not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, errors.New("project name is required")
	}
	project := Project{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, project); err != nil {
		return Project{}, err
	}
	return project, nil
}

// GetOwned loads a project and verifies the caller owns it. Projects
// belonging to other owners are reported as not found.
func (s *Service) GetOwned(ctx context.Context, ownerID, projectID string) (Project, error) {
	if s == nil || s.Repo == nil {
		return Project{}, errors.New("projects service not configured")
	}
	project, err := s.Repo.GetByID(ctx, projectID)
	if err != nil {
		return Project{}, err
	}
	if project.OwnerID != ownerID {
		return Project{}, ErrNotFound
	}
	return project, nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Project, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("projects service not configured")
	}
	return s.Repo.ListByOwner(ctx, ownerID)
}
