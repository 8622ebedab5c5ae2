package jobs

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func jobRow(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "project_id", "question", "input_file_ids", "status", "current_step",
		"progress", "steps", "missing_data", "hypotheses", "result", "error_code", "error_message",
		"started_at", "completed_at", "created_at", "updated_at",
	})
	now := time.Now().UTC()
	for _, id := range ids {
		rows.AddRow(
			id, "owner-1", "proj-1", "Should we expand?", `["file-1"]`, StatusInProgress, StepCheckingFiles,
			22, `[{"name":"analyzing_question","label":"Analyzing the question","status":"completed"}]`,
			`[]`, `[]`, nil, nil, nil,
			nil, nil, now, now,
		)
	}
	return rows
}

func TestPGRepoGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectQuery(`SELECT (.+) FROM jobs WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(jobRow("job-1"))

	job, err := repo.GetByID(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.ID != "job-1" || job.Status != StatusInProgress || job.Progress != 22 {
		t.Errorf("unexpected job: %+v", job)
	}
	if len(job.InputFileIDs) != 1 || job.InputFileIDs[0] != "file-1" {
		t.Errorf("input_file_ids not decoded: %+v", job.InputFileIDs)
	}
	if len(job.Steps) != 1 || job.Steps[0].Name != StepAnalyzingQuestion {
		t.Errorf("steps not decoded: %+v", job.Steps)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectQuery(`SELECT (.+) FROM jobs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(jobRow())

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateOnlyNamedColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET progress = $1, updated_at = now() WHERE id = $2")).
		WithArgs(40, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), "job-1", JobUpdate{Progress: intPtr(40)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGRepoUpdateClearsTerminalColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET result = $1, error_code = $2, error_message = $3, completed_at = $4, updated_at = now() WHERE id = $5")).
		WithArgs(nil, nil, nil, nil, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	update := JobUpdate{
		Result:           resultPtr(nil),
		ErrorCode:        stringPtr(""),
		ErrorMessage:     stringPtr(""),
		ClearCompletedAt: true,
	}
	if err := repo.Update(context.Background(), "job-1", update); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGRepoUpdateEmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	if err := repo.Update(context.Background(), "job-1", JobUpdate{}); err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGRepoUpdateIfStatusStale(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status = $1, updated_at = now() WHERE id = $2 AND status = $3")).
		WithArgs(StatusInProgress, "job-1", StatusWaitingForData).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM jobs WHERE id = \$1`).
		WithArgs("job-1").
		WillReturnRows(jobRow("job-1"))

	err = repo.UpdateIfStatus(context.Background(), "job-1", StatusWaitingForData,
		JobUpdate{Status: stringPtr(StatusInProgress)})
	if !errors.Is(err, ErrStaleOperation) {
		t.Fatalf("expected ErrStaleOperation, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPGRepoUpdateIfStatusMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectExec(`UPDATE jobs SET (.+) WHERE id = \$2 AND status = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT (.+) FROM jobs WHERE id = \$1`).
		WithArgs("gone").
		WillReturnRows(jobRow())

	err = repo.UpdateIfStatus(context.Background(), "gone", StatusWaitingForData,
		JobUpdate{Status: stringPtr(StatusInProgress)})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM jobs WHERE id = $1")).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByProject(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectQuery(`SELECT (.+) FROM jobs WHERE project_id = \$1 ORDER BY created_at DESC`).
		WithArgs("proj-1", 50, 0).
		WillReturnRows(jobRow("job-2", "job-1"))

	items, err := repo.ListByProject(context.Background(), "proj-1", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != "job-2" {
		t.Errorf("unexpected listing: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
