package datafiles

import (
	"context"
	"errors"
	"strings"
	"testing"

	localstore "decision-backend/internal/shared/storage/object/local"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemoryRepo(), localstore.New(t.TempDir()))
}

func TestUploadAndPreview(t *testing.T) {
	svc := newTestService(t)

	body := "month,revenue\nJan,100\nFeb,120\n"
	file, err := svc.Upload(context.Background(), "owner-1", "proj-1", "revenue.csv", strings.NewReader(body))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if file.ID == "" || file.StorageKey == "" {
		t.Errorf("incomplete record: %+v", file)
	}
	if file.SizeBytes != int64(len(body)) {
		t.Errorf("expected size %d, got %d", len(body), file.SizeBytes)
	}

	preview := svc.PreviewText(context.Background(), file)
	if !strings.HasPrefix(preview, "=== revenue.csv ===") {
		t.Errorf("preview missing header: %q", preview)
	}
	if !strings.Contains(preview, "Jan | 100") {
		t.Errorf("preview missing rows: %q", preview)
	}
}

func TestUploadRejectsOversize(t *testing.T) {
	svc := newTestService(t)

	big := strings.NewReader(strings.Repeat("x", maxUploadBytes+1))
	if _, err := svc.Upload(context.Background(), "owner-1", "proj-1", "big.txt", big); err == nil {
		t.Fatal("expected error for oversized upload")
	}
	files, err := svc.ListByProject(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("oversized upload must not leave a record, got %d", len(files))
	}
}

func TestUploadRequiresFileName(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Upload(context.Background(), "owner-1", "proj-1", "  ", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for blank file name")
	}
}

func TestGetOwnedHidesForeignFiles(t *testing.T) {
	svc := newTestService(t)
	file, err := svc.Upload(context.Background(), "owner-1", "proj-1", "notes.txt", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := svc.GetOwned(context.Background(), "owner-1", file.ID); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := svc.GetOwned(context.Background(), "owner-2", file.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign owner, got %v", err)
	}
}

func TestPreviewTextDegradesOnFailure(t *testing.T) {
	svc := newTestService(t)
	preview := svc.PreviewText(context.Background(), DataFile{
		ID: "gone", FileName: "lost.csv", MimeType: "text/csv", StorageKey: "missing/key",
	})
	if !strings.Contains(preview, `"lost.csv"`) || !strings.Contains(preview, "content unavailable") {
		t.Errorf("expected degraded stub, got %q", preview)
	}
}
