package tabs

import (
	"context"
	"errors"
	"testing"
	"time"

	"decision-backend/internal/jobs"
)

func newFixture(t *testing.T) (*jobs.Service, *Service, *jobs.MemoryRepo) {
	t.Helper()
	jobsRepo := jobs.NewMemoryRepo()
	jobSvc := &jobs.Service{Repo: jobsRepo}
	tabSvc := NewService(NewMemoryRepo(), jobSvc)
	jobSvc.Closed = tabSvc
	return jobSvc, tabSvc, jobsRepo
}

func seedJob(t *testing.T, repo *jobs.MemoryRepo, id, status string, createdAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), jobs.Job{
		ID:        id,
		OwnerID:   "owner-1",
		ProjectID: "proj-1",
		Question:  "Should we expand?",
		Status:    status,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("seed job %s: %v", id, err)
	}
}

func TestCloseRequiresTerminalStatus(t *testing.T) {
	_, tabSvc, repo := newFixture(t)
	now := time.Now().UTC()
	seedJob(t, repo, "running", jobs.StatusInProgress, now)
	seedJob(t, repo, "waiting", jobs.StatusWaitingForData, now)
	seedJob(t, repo, "done", jobs.StatusCompleted, now)
	seedJob(t, repo, "errored", jobs.StatusError, now)

	for _, id := range []string{"running", "waiting"} {
		if err := tabSvc.Close(context.Background(), "owner-1", "proj-1", id); !errors.Is(err, ErrNotClosable) {
			t.Errorf("job %s: expected ErrNotClosable, got %v", id, err)
		}
	}
	for _, id := range []string{"done", "errored"} {
		if err := tabSvc.Close(context.Background(), "owner-1", "proj-1", id); err != nil {
			t.Errorf("job %s: close failed: %v", id, err)
		}
	}
}

func TestCloseUnknownJob(t *testing.T) {
	_, tabSvc, _ := newFixture(t)
	if err := tabSvc.Close(context.Background(), "owner-1", "proj-1", "nope"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClosedJobHiddenFromListingButStillGettable(t *testing.T) {
	jobSvc, tabSvc, repo := newFixture(t)
	now := time.Now().UTC()
	seedJob(t, repo, "job-1", jobs.StatusCompleted, now.Add(-time.Minute))
	seedJob(t, repo, "job-2", jobs.StatusCompleted, now)

	if err := tabSvc.Close(context.Background(), "owner-1", "proj-1", "job-1"); err != nil {
		t.Fatalf("close: %v", err)
	}

	active, err := jobSvc.List(context.Background(), "owner-1", "proj-1", false, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].ID != "job-2" {
		t.Errorf("expected only job-2 in active listing, got %+v", active)
	}

	all, err := jobSvc.List(context.Background(), "owner-1", "proj-1", true, 0, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected both jobs with includeClosed, got %d", len(all))
	}

	if _, err := jobSvc.Get(context.Background(), "owner-1", "job-1"); err != nil {
		t.Errorf("closed job must stay reachable by ID: %v", err)
	}
}

func TestReopenRestoresListing(t *testing.T) {
	jobSvc, tabSvc, repo := newFixture(t)
	seedJob(t, repo, "job-1", jobs.StatusCompleted, time.Now().UTC())

	if err := tabSvc.Close(context.Background(), "owner-1", "proj-1", "job-1"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := tabSvc.Reopen(context.Background(), "owner-1", "proj-1", "job-1"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	// Reopening an already open job is a no-op.
	if err := tabSvc.Reopen(context.Background(), "owner-1", "proj-1", "job-1"); err != nil {
		t.Fatalf("second reopen: %v", err)
	}

	active, err := jobSvc.List(context.Background(), "owner-1", "proj-1", false, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("expected reopened job in listing, got %d jobs", len(active))
	}
	closed, err := tabSvc.IsClosed(context.Background(), "proj-1", "job-1")
	if err != nil {
		t.Fatalf("is closed: %v", err)
	}
	if closed {
		t.Error("job should not be closed after reopen")
	}
}

func TestPurgeDeletesJobAndMembership(t *testing.T) {
	jobSvc, tabSvc, repo := newFixture(t)
	seedJob(t, repo, "job-1", jobs.StatusCompleted, time.Now().UTC())

	if err := tabSvc.Close(context.Background(), "owner-1", "proj-1", "job-1"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := tabSvc.Purge(context.Background(), "owner-1", "proj-1", "job-1"); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if _, err := jobSvc.Get(context.Background(), "owner-1", "job-1"); !errors.Is(err, jobs.ErrNotFound) {
		t.Errorf("expected purged job gone, got %v", err)
	}
	ids, err := tabSvc.ClosedIDs(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("closed ids: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty closed set after purge, got %v", ids)
	}
}

func TestPurgeScopedToOwner(t *testing.T) {
	_, tabSvc, repo := newFixture(t)
	seedJob(t, repo, "job-1", jobs.StatusCompleted, time.Now().UTC())

	if err := tabSvc.Purge(context.Background(), "owner-2", "proj-1", "job-1"); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
}
