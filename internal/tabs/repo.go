package tabs

import (
	"context"
	"errors"
	"time"
)

var ErrNotClosable = errors.New("job is not in a terminal status")

// ClosedTab marks a job as closed within its project.
type ClosedTab struct {
	ProjectID string    `json:"projectId"`
	JobID     string    `json:"jobId"`
	ClosedAt  time.Time `json:"closedAt"`
}

// Repo persists the per-project closed set.
type Repo interface {
	Close(ctx context.Context, projectID, jobID string) error
	Reopen(ctx context.Context, projectID, jobID string) error
	IsClosed(ctx context.Context, projectID, jobID string) (bool, error)
	ClosedIDs(ctx context.Context, projectID string) (map[string]struct{}, error)
}
