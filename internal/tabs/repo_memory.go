package tabs

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	closed map[string]map[string]time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{closed: make(map[string]map[string]time.Time)}
}

func (r *MemoryRepo) Close(ctx context.Context, projectID, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed[projectID] == nil {
		r.closed[projectID] = make(map[string]time.Time)
	}
	r.closed[projectID][jobID] = time.Now().UTC()
	return nil
}

func (r *MemoryRepo) Reopen(ctx context.Context, projectID, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.closed[projectID]; ok {
		delete(set, jobID)
	}
	return nil
}

func (r *MemoryRepo) IsClosed(ctx context.Context, projectID, jobID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.closed[projectID]
	if !ok {
		return false, nil
	}
	_, closed := set[jobID]
	return closed, nil
}

func (r *MemoryRepo) ClosedIDs(ctx context.Context, projectID string) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{})
	for jobID := range r.closed[projectID] {
		out[jobID] = struct{}{}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
