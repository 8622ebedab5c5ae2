package projects

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, project Project) error {
	const query = `
INSERT INTO projects (id, owner_id, name, created_at)
VALUES ($1, $2, $3, now())`
	_, err := r.DB.ExecContext(ctx, query, project.ID, project.OwnerID, project.Name)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, projectID string) (Project, error) {
	const query = `
SELECT id, owner_id, name, created_at
FROM projects
WHERE id = $1
LIMIT 1`
	var project Project
	err := r.DB.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return project, nil
}

func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Project, error) {
	const query = `
SELECT id, owner_id, name, created_at
FROM projects
WHERE owner_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0)
	for rows.Next() {
		var project Project
		if err := rows.Scan(&project.ID, &project.OwnerID, &project.Name, &project.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, project)
	}
	return out, rows.Err()
}
