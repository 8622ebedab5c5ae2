package datafiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"decision-backend/internal/shared/storage/object"
	"decision-backend/internal/shared/telemetry"
)

const maxUploadBytes = 10 << 20

type Service struct {
	Repo  Repo
	Store object.ObjectStore
}

func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store}
}

// Upload stores the file body and records its metadata.
func (s *Service) Upload(ctx context.Context, ownerID, projectID, fileName string, r io.Reader) (DataFile, error) {
	if s == nil || s.Repo == nil || s.Store == nil {
		return DataFile{}, errors.New("datafiles service not configured")
	}
	if strings.TrimSpace(fileName) == "" {
		return DataFile{}, errors.New("file name is required")
	}

	limited := io.LimitReader(r, maxUploadBytes+1)
	storageKey, size, mimeType, err := s.Store.Save(ctx, ownerID, fileName, limited)
	if err != nil {
		return DataFile{}, fmt.Errorf("save object: %w", err)
	}
	if size > maxUploadBytes {
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Warn("datafiles.cleanup.failed", map[string]any{
				"storage_key": storageKey,
				"err":         delErr.Error(),
			})
		}
		return DataFile{}, errors.New("file exceeds size limit")
	}

	file := DataFile{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		ProjectID:  projectID,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, file); err != nil {
		return DataFile{}, fmt.Errorf("persist data file: %w", err)
	}

	telemetry.Info("datafiles.uploaded", map[string]any{
		"file_id":    file.ID,
		"project_id": projectID,
		"mime_type":  mimeType,
		"size_bytes": size,
	})
	return file, nil
}

// GetOwned loads a file and verifies ownership.
func (s *Service) GetOwned(ctx context.Context, ownerID, fileID string) (DataFile, error) {
	if s == nil || s.Repo == nil {
		return DataFile{}, errors.New("datafiles service not configured")
	}
	file, err := s.Repo.GetByID(ctx, fileID)
	if err != nil {
		return DataFile{}, err
	}
	if file.OwnerID != ownerID {
		return DataFile{}, ErrNotFound
	}
	return file, nil
}

func (s *Service) ListByProject(ctx context.Context, projectID string) ([]DataFile, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("datafiles service not configured")
	}
	return s.Repo.ListByProject(ctx, projectID)
}

// PreviewText renders a stored file as text context for analysis.
// Extraction failures degrade to a name-only stub rather than blocking
// the pipeline.
func (s *Service) PreviewText(ctx context.Context, file DataFile) string {
	text, err := ExtractText(ctx, s.Store, file.StorageKey, file.MimeType, file.FileName)
	if err != nil {
		telemetry.Warn("datafiles.extract.failed", map[string]any{
			"file_id":   file.ID,
			"mime_type": file.MimeType,
			"err":       err.Error(),
		})
		return fmt.Sprintf("[file %q: content unavailable]", file.FileName)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "=== %s ===\n", file.FileName)
	buf.WriteString(text)
	return buf.String()
}
