package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the services table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE services (
			full_name TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			service_name TEXT NOT NULL,
			description TEXT,
			fields TEXT NOT NULL DEFAULT '{}',
			target TEXT,
			response_optional INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_services_domain ON services(domain);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func strPtr(s string) *string { return &s }

func TestSQLiteRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	svc := &Service{
		FullName:    "light.turn_on",
		Domain:      "light",
		ServiceName: "turn_on",
		Description: strPtr("Turn on one or more lights"),
		Fields: map[string]any{
			"brightness": map[string]any{"min": float64(0), "max": float64(255)},
		},
		Target: strPtr(`{"entity":{"domain":"light"}}`),
	}

	if err := repo.Upsert(ctx, svc); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repo.GetByName(ctx, "light.turn_on")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if got.Domain != "light" || got.ServiceName != "turn_on" {
		t.Errorf("key split: got %q/%q", got.Domain, got.ServiceName)
	}
	if _, ok := got.Fields["brightness"]; !ok {
		t.Errorf("fields: got %v", got.Fields)
	}
	if got.ResponseOptional {
		t.Error("response_optional should default false")
	}
}

func TestSQLiteRepository_Upsert_Overwrite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	svc := &Service{FullName: "light.turn_on", Domain: "light", ServiceName: "turn_on"}
	if err := repo.Upsert(ctx, svc); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	svc.Description = strPtr("Updated description")
	svc.ResponseOptional = true
	if err := repo.Upsert(ctx, svc); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	services, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(services) != 1 {
		t.Fatalf("expected 1 service after upsert, got %d", len(services))
	}
	if services[0].Description == nil || *services[0].Description != "Updated description" {
		t.Errorf("description after overwrite: got %v", services[0].Description)
	}
	if !services[0].ResponseOptional {
		t.Error("response_optional after overwrite: got false")
	}
}

func TestSQLiteRepository_ListByDomain(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	seed := []*Service{
		{FullName: "light.turn_on", Domain: "light", ServiceName: "turn_on"},
		{FullName: "light.turn_off", Domain: "light", ServiceName: "turn_off"},
		{FullName: "media_player.volume_set", Domain: "media_player", ServiceName: "volume_set"},
	}
	for _, svc := range seed {
		if err := repo.Upsert(ctx, svc); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	lights, err := repo.ListByDomain(ctx, "light")
	if err != nil {
		t.Fatalf("ListByDomain failed: %v", err)
	}
	if len(lights) != 2 {
		t.Errorf("expected 2 light services, got %d", len(lights))
	}
}

func TestSQLiteRepository_Upsert_MissingKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &Service{Domain: "light"}); !errors.Is(err, ErrMissingNaturalKey) {
		t.Errorf("Upsert: got %v, want ErrMissingNaturalKey", err)
	}
}

func TestSQLiteRepository_GetByName_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByName(ctx, "light.nonexistent"); !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("GetByName: got %v, want ErrServiceNotFound", err)
	}
}
