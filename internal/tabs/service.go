package tabs

import (
	"context"
	"errors"
	"fmt"

	"decision-backend/internal/jobs"
	"decision-backend/internal/shared/telemetry"
)

// JobCatalog is the slice of the jobs service the tab lifecycle needs.
type JobCatalog interface {
	StatusOwned(ctx context.Context, ownerID, jobID string) (string, error)
	DeleteOwned(ctx context.Context, ownerID, jobID string) error
}

// Service maintains the per-project closed set. Closing hides a job from
// active listings without touching the job record; purging deletes both.
type Service struct {
	Repo Repo
	Jobs JobCatalog
}

func NewService(repo Repo, catalog JobCatalog) *Service {
	return &Service{Repo: repo, Jobs: catalog}
}

// Close marks a finished job as closed. Only completed or errored jobs
// can be closed, which keeps the closed set a subset of existing records.
func (s *Service) Close(ctx context.Context, ownerID, projectID, jobID string) error {
	if s == nil || s.Repo == nil || s.Jobs == nil {
		return errors.New("tabs service not configured")
	}
	status, err := s.Jobs.StatusOwned(ctx, ownerID, jobID)
	if err != nil {
		return err
	}
	if !jobs.Terminal(status) {
		return fmt.Errorf("close job in %s: %w", status, ErrNotClosable)
	}
	if err := s.Repo.Close(ctx, projectID, jobID); err != nil {
		return err
	}
	telemetry.Info("tab.closed", map[string]any{
		"owner_id":   ownerID,
		"project_id": projectID,
		"job_id":     jobID,
	})
	return nil
}

// Reopen returns a closed job to active listings. Reopening an open job
// is a no-op.
func (s *Service) Reopen(ctx context.Context, ownerID, projectID, jobID string) error {
	if s == nil || s.Repo == nil || s.Jobs == nil {
		return errors.New("tabs service not configured")
	}
	if _, err := s.Jobs.StatusOwned(ctx, ownerID, jobID); err != nil {
		return err
	}
	return s.Repo.Reopen(ctx, projectID, jobID)
}

// Purge deletes the job record and its closed-set membership. Irreversible.
func (s *Service) Purge(ctx context.Context, ownerID, projectID, jobID string) error {
	if s == nil || s.Repo == nil || s.Jobs == nil {
		return errors.New("tabs service not configured")
	}
	if err := s.Jobs.DeleteOwned(ctx, ownerID, jobID); err != nil {
		return err
	}
	if err := s.Repo.Reopen(ctx, projectID, jobID); err != nil {
		return err
	}
	telemetry.Info("tab.purged", map[string]any{
		"owner_id":   ownerID,
		"project_id": projectID,
		"job_id":     jobID,
	})
	return nil
}

// IsClosed reports whether a job is closed within its project.
func (s *Service) IsClosed(ctx context.Context, projectID, jobID string) (bool, error) {
	if s == nil || s.Repo == nil {
		return false, errors.New("tabs service not configured")
	}
	return s.Repo.IsClosed(ctx, projectID, jobID)
}

// ClosedIDs returns the closed set for a project. Satisfies the active
// listing filter in the jobs service.
func (s *Service) ClosedIDs(ctx context.Context, projectID string) (map[string]struct{}, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("tabs service not configured")
	}
	return s.Repo.ClosedIDs(ctx, projectID)
}

var _ jobs.ClosedSet = (*Service)(nil)
