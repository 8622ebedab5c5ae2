package projects

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "project not found" }

type Repo interface {
	Create(ctx context.Context, project Project) error
	GetByID(ctx context.Context, projectID string) (Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Project, error)
}
