package datafiles

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, file DataFile) error {
	const query = `
INSERT INTO data_files (id, owner_id, project_id, file_name, mime_type, size_bytes, storage_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())`
	_, err := r.DB.ExecContext(ctx, query,
		file.ID,
		file.OwnerID,
		file.ProjectID,
		file.FileName,
		file.MimeType,
		file.SizeBytes,
		file.StorageKey,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, fileID string) (DataFile, error) {
	const query = `
SELECT id, owner_id, project_id, file_name, mime_type, size_bytes, storage_key, created_at
FROM data_files
WHERE id = $1
LIMIT 1`
	var file DataFile
	err := r.DB.QueryRowContext(ctx, query, fileID).Scan(
		&file.ID,
		&file.OwnerID,
		&file.ProjectID,
		&file.FileName,
		&file.MimeType,
		&file.SizeBytes,
		&file.StorageKey,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DataFile{}, ErrNotFound
		}
		return DataFile{}, err
	}
	return file, nil
}

func (r *PGRepo) ListByProject(ctx context.Context, projectID string) ([]DataFile, error) {
	const query = `
SELECT id, owner_id, project_id, file_name, mime_type, size_bytes, storage_key, created_at
FROM data_files
WHERE project_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DataFile, 0)
	for rows.Next() {
		var file DataFile
		if err := rows.Scan(
			&file.ID,
			&file.OwnerID,
			&file.ProjectID,
			&file.FileName,
			&file.MimeType,
			&file.SizeBytes,
			&file.StorageKey,
			&file.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, file)
	}
	return out, rows.Err()
}
