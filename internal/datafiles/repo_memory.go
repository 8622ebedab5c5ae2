package datafiles

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	files map[string]DataFile
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{files: make(map[string]DataFile)}
}

func (r *MemoryRepo) Create(ctx context.Context, file DataFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[file.ID] = file
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, fileID string) (DataFile, error) {
	if err := ctx.Err(); err != nil {
		return DataFile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.files[fileID]
	if !ok {
		return DataFile{}, ErrNotFound
	}
	return file, nil
}

func (r *MemoryRepo) ListByProject(ctx context.Context, projectID string) ([]DataFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DataFile, 0)
	for _, f := range r.files {
		if f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
