package tabs

import (
	"context"
	"database/sql"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Close(ctx context.Context, projectID, jobID string) error {
	const query = `
INSERT INTO closed_tabs (project_id, job_id, closed_at)
VALUES ($1, $2, now())
ON CONFLICT (project_id, job_id) DO NOTHING`
	_, err := r.DB.ExecContext(ctx, query, projectID, jobID)
	return err
}

func (r *PGRepo) Reopen(ctx context.Context, projectID, jobID string) error {
	const query = `DELETE FROM closed_tabs WHERE project_id = $1 AND job_id = $2`
	_, err := r.DB.ExecContext(ctx, query, projectID, jobID)
	return err
}

func (r *PGRepo) IsClosed(ctx context.Context, projectID, jobID string) (bool, error) {
	const query = `SELECT 1 FROM closed_tabs WHERE project_id = $1 AND job_id = $2 LIMIT 1`
	var one int
	err := r.DB.QueryRowContext(ctx, query, projectID, jobID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PGRepo) ClosedIDs(ctx context.Context, projectID string) (map[string]struct{}, error) {
	const query = `SELECT job_id FROM closed_tabs WHERE project_id = $1`
	rows, err := r.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var jobID string
		if err := rows.Scan(&jobID); err != nil {
			return nil, err
		}
		out[jobID] = struct{}{}
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
