package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new job.
func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (
	id, owner_id, project_id, question, input_file_ids, status, current_step,
	progress, steps, missing_data, hypotheses, result, error_code, error_message,
	started_at, completed_at, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, now(), now())`
	fileIDs, err := marshalJSONB(job.InputFileIDs)
	if err != nil {
		return err
	}
	steps, err := marshalJSONB(job.Steps)
	if err != nil {
		return err
	}
	missing, err := marshalJSONB(job.MissingData)
	if err != nil {
		return err
	}
	hypotheses, err := marshalJSONB(job.Hypotheses)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		job.ID,
		job.OwnerID,
		job.ProjectID,
		job.Question,
		fileIDs,
		job.Status,
		job.CurrentStep,
		job.Progress,
		steps,
		missing,
		hypotheses,
		nullableRaw(job.Result),
		nullableStr(job.ErrorCode),
		nullableStr(job.ErrorMessage),
		job.StartedAt,
		job.CompletedAt,
	)
	return err
}

const jobColumns = `id, owner_id, project_id, question, input_file_ids, status, current_step,
       progress, steps, missing_data, hypotheses, result, error_code, error_message,
       started_at, completed_at, created_at, updated_at`

// GetByID returns a job by ID.
func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	query := `
SELECT ` + jobColumns + `
FROM jobs
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, jobID)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

// Update writes only the fields the update names.
func (r *PGRepo) Update(ctx context.Context, jobID string, update JobUpdate) error {
	set, args, err := buildSet(update)
	if err != nil {
		return err
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, jobID)
	query := fmt.Sprintf("UPDATE jobs SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateIfStatus writes only when the stored status matches. A status
// mismatch is reported as ErrStaleOperation so callers can treat lost
// races as benign.
func (r *PGRepo) UpdateIfStatus(ctx context.Context, jobID, expectedStatus string, update JobUpdate) error {
	set, args, err := buildSet(update)
	if err != nil {
		return err
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, jobID, expectedStatus)
	query := fmt.Sprintf("UPDATE jobs SET %s WHERE id = $%d AND status = $%d",
		strings.Join(set, ", "), len(args)-1, len(args))
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, jobID); err != nil {
			return err
		}
		return ErrStaleOperation
	}
	return nil
}

// ListByProject returns jobs for a project ordered newest-first.
func (r *PGRepo) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + jobColumns + `
FROM jobs
WHERE project_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// Delete removes a job row. closed_tabs rows cascade.
func (r *PGRepo) Delete(ctx context.Context, jobID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, jobID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func buildSet(update JobUpdate) ([]string, []any, error) {
	var set []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.CurrentStep != nil {
		add("current_step", *update.CurrentStep)
	}
	if update.Progress != nil {
		add("progress", *update.Progress)
	}
	if update.Steps != nil {
		payload, err := marshalJSONB(*update.Steps)
		if err != nil {
			return nil, nil, err
		}
		add("steps", payload)
	}
	if update.MissingData != nil {
		payload, err := marshalJSONB(*update.MissingData)
		if err != nil {
			return nil, nil, err
		}
		add("missing_data", payload)
	}
	if update.Hypotheses != nil {
		payload, err := marshalJSONB(*update.Hypotheses)
		if err != nil {
			return nil, nil, err
		}
		add("hypotheses", payload)
	}
	if update.Result != nil {
		add("result", nullableRaw(*update.Result))
	}
	if update.ErrorCode != nil {
		add("error_code", nullableStr(*update.ErrorCode))
	}
	if update.ErrorMessage != nil {
		add("error_message", nullableStr(*update.ErrorMessage))
	}
	if update.StartedAt != nil {
		add("started_at", *update.StartedAt)
	}
	if update.CompletedAt != nil {
		add("completed_at", *update.CompletedAt)
	} else if update.ClearCompletedAt {
		add("completed_at", nil)
	}
	if len(set) > 0 {
		set = append(set, "updated_at = now()")
	}
	return set, args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var fileIDs []byte
	var steps []byte
	var missing []byte
	var hypotheses []byte
	var result sql.NullString
	var errorCode sql.NullString
	var errorMessage sql.NullString
	var startedAt sql.NullTime
	var completedAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.ProjectID,
		&job.Question,
		&fileIDs,
		&job.Status,
		&job.CurrentStep,
		&job.Progress,
		&steps,
		&missing,
		&hypotheses,
		&result,
		&errorCode,
		&errorMessage,
		&startedAt,
		&completedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return Job{}, err
	}

	if err := unmarshalJSONB(fileIDs, &job.InputFileIDs); err != nil {
		return Job{}, fmt.Errorf("job %s: input_file_ids: %w", job.ID, err)
	}
	if err := unmarshalJSONB(steps, &job.Steps); err != nil {
		return Job{}, fmt.Errorf("job %s: steps: %w", job.ID, err)
	}
	if err := unmarshalJSONB(missing, &job.MissingData); err != nil {
		return Job{}, fmt.Errorf("job %s: missing_data: %w", job.ID, err)
	}
	if err := unmarshalJSONB(hypotheses, &job.Hypotheses); err != nil {
		return Job{}, fmt.Errorf("job %s: hypotheses: %w", job.ID, err)
	}
	if result.Valid && result.String != "" {
		job.Result = json.RawMessage(result.String)
	}
	if errorCode.Valid {
		job.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		job.ErrorMessage = errorMessage.String
	}
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return job, nil
}

func marshalJSONB(value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	if string(raw) == "null" {
		return "[]", nil
	}
	return string(raw), nil
}

func unmarshalJSONB(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func nullableStr(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableRaw(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

var _ Repo = (*PGRepo)(nil)
