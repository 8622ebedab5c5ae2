package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]Job)}
}

func (r *MemoryRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) Update(ctx context.Context, jobID string, update JobUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	r.jobs[jobID] = applyUpdate(job, update)
	return nil
}

func (r *MemoryRepo) UpdateIfStatus(ctx context.Context, jobID, expectedStatus string, update JobUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	if job.Status != expectedStatus {
		return ErrStaleOperation
	}
	r.jobs[jobID] = applyUpdate(job, update)
	return nil
}

func (r *MemoryRepo) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Job, 0)
	for _, job := range r.jobs {
		if job.ProjectID == projectID {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset > 0 {
		if offset >= len(out) {
			return []Job{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[jobID]; !ok {
		return ErrNotFound
	}
	delete(r.jobs, jobID)
	return nil
}

func applyUpdate(job Job, update JobUpdate) Job {
	if update.Status != nil {
		job.Status = *update.Status
	}
	if update.CurrentStep != nil {
		job.CurrentStep = *update.CurrentStep
	}
	if update.Progress != nil {
		job.Progress = *update.Progress
	}
	if update.Steps != nil {
		job.Steps = cloneSteps(*update.Steps)
	}
	if update.MissingData != nil {
		job.MissingData = append([]MissingDataItem(nil), (*update.MissingData)...)
	}
	if update.Hypotheses != nil {
		job.Hypotheses = append([]Hypothesis(nil), (*update.Hypotheses)...)
	}
	if update.Result != nil {
		if len(*update.Result) == 0 {
			job.Result = nil
		} else {
			job.Result = append([]byte(nil), (*update.Result)...)
		}
	}
	if update.ErrorCode != nil {
		job.ErrorCode = *update.ErrorCode
	}
	if update.ErrorMessage != nil {
		job.ErrorMessage = *update.ErrorMessage
	}
	if update.StartedAt != nil {
		job.StartedAt = update.StartedAt
	}
	if update.CompletedAt != nil {
		job.CompletedAt = update.CompletedAt
	} else if update.ClearCompletedAt {
		job.CompletedAt = nil
	}
	job.UpdatedAt = time.Now().UTC()
	return job
}

func cloneSteps(steps []Step) []Step {
	return append([]Step(nil), steps...)
}

var _ Repo = (*MemoryRepo)(nil)
