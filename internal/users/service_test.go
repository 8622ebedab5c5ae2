package users

import (
	"context"
	"errors"
	"testing"
)

func TestUpsertFromAuth(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: "a@example.com", Name: "Alex"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// A later sign-in with updated profile fields replaces the record.
	err = svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: "a@example.com", Name: "Alexandra"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	user, err := svc.GetByID(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Name != "Alexandra" {
		t.Errorf("expected updated name, got %q", user.Name)
	}
}

func TestUpsertFromAuthValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.UpsertFromAuth(context.Background(), User{Email: "a@example.com"}); err == nil {
		t.Error("expected error for missing id")
	}
	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1"}); err == nil {
		t.Error("expected error for missing email")
	}
}

func TestGetByIDUnknown(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.GetByID(context.Background(), "google:missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
