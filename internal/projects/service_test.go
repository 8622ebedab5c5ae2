package projects

import (
	"context"
	"errors"
	"testing"
)

func TestCreateProject(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	project, err := svc.Create(context.Background(), "owner-1", "  Expansion Plan  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.ID == "" {
		t.Error("expected generated id")
	}
	if project.Name != "Expansion Plan" {
		t.Errorf("expected trimmed name, got %q", project.Name)
	}

	if _, err := svc.Create(context.Background(), "owner-1", "   "); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestGetOwnedHidesForeignProjects(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	project, err := svc.Create(context.Background(), "owner-1", "Expansion Plan")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetOwned(context.Background(), "owner-1", project.ID); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := svc.GetOwned(context.Background(), "owner-2", project.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if _, err := svc.GetOwned(context.Background(), "owner-1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestListScopedToOwner(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.Create(context.Background(), "owner-1", "Plan A"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "owner-2", "Plan B"); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, err := svc.List(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Plan A" {
		t.Errorf("unexpected listing: %+v", items)
	}
}
