package datafiles

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "data file not found" }

type Repo interface {
	Create(ctx context.Context, file DataFile) error
	GetByID(ctx context.Context, fileID string) (DataFile, error)
	ListByProject(ctx context.Context, projectID string) ([]DataFile, error)
}
