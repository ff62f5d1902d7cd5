package entity

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the entity tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE entities (
			entity_id TEXT PRIMARY KEY,
			entity_type TEXT NOT NULL DEFAULT '',
			domain TEXT NOT NULL DEFAULT '',
			object_id TEXT NOT NULL DEFAULT '',
			friendly_name TEXT,
			device_id TEXT,
			area_id TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_entities_type ON entities(entity_type);
		CREATE INDEX idx_entities_domain ON entities(domain);
		CREATE TABLE entity_states (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_id TEXT NOT NULL,
			snapshot_id TEXT NOT NULL,
			state TEXT,
			state_class TEXT,
			last_changed TEXT,
			last_updated TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_entity_states_entity ON entity_states(entity_id, created_at);
		CREATE TABLE entity_attributes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_state_id INTEGER NOT NULL,
			attr_key TEXT NOT NULL,
			attr_value TEXT,
			attr_type TEXT NOT NULL DEFAULT 'object'
		) STRICT;
		CREATE INDEX idx_entity_attributes_state ON entity_attributes(entity_state_id);
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

func testEntity(entityID, entityType string) *Entity {
	domain, objectID := entityID, ""
	for i := 0; i < len(entityID); i++ {
		if entityID[i] == '.' {
			domain, objectID = entityID[:i], entityID[i+1:]
			break
		}
	}
	return &Entity{
		EntityID:   entityID,
		EntityType: entityType,
		Domain:     domain,
		ObjectID:   objectID,
	}
}

func TestSQLiteRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	e := testEntity("light.kitchen_ceiling", "lights")
	e.FriendlyName = strPtr("Kitchen Ceiling")
	e.AreaID = strPtr("kitchen")

	if err := repo.Upsert(ctx, e); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "light.kitchen_ceiling")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Domain != "light" || got.ObjectID != "kitchen_ceiling" {
		t.Errorf("key split: got domain=%q object_id=%q", got.Domain, got.ObjectID)
	}
	if got.FriendlyName == nil || *got.FriendlyName != "Kitchen Ceiling" {
		t.Errorf("friendly name: got %v", got.FriendlyName)
	}
}

func TestSQLiteRepository_Upsert_Overwrite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	e := testEntity("light.kitchen_ceiling", "lights")
	if err := repo.Upsert(ctx, e); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	e.FriendlyName = strPtr("Renamed")
	if err := repo.Upsert(ctx, e); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	entities, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity after upsert, got %d", len(entities))
	}
	if entities[0].FriendlyName == nil || *entities[0].FriendlyName != "Renamed" {
		t.Errorf("friendly name after overwrite: got %v", entities[0].FriendlyName)
	}
}

func TestSQLiteRepository_Upsert_MissingKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.Upsert(ctx, &Entity{EntityType: "lights"}); !errors.Is(err, ErrMissingNaturalKey) {
		t.Errorf("Upsert: got %v, want ErrMissingNaturalKey", err)
	}
}

func TestSQLiteRepository_ListByType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	seed := []*Entity{
		testEntity("light.kitchen", "lights"),
		testEntity("light.lounge", "lights"),
		testEntity("sensor.outside_temp", "sensors"),
	}
	for _, e := range seed {
		if err := repo.Upsert(ctx, e); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	lights, err := repo.ListByType(ctx, "lights")
	if err != nil {
		t.Fatalf("ListByType failed: %v", err)
	}
	if len(lights) != 2 {
		t.Errorf("expected 2 lights, got %d", len(lights))
	}

	sensors, err := repo.ListByDomain(ctx, "sensor")
	if err != nil {
		t.Fatalf("ListByDomain failed: %v", err)
	}
	if len(sensors) != 1 || sensors[0].EntityID != "sensor.outside_temp" {
		t.Errorf("ListByDomain: got %v", sensors)
	}
}

func TestSQLiteRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	e1 := testEntity("light.kitchen", "lights")
	e1.FriendlyName = strPtr("Kitchen Ceiling")
	e2 := testEntity("sensor.garage_door", "sensors")
	e2.FriendlyName = strPtr("Garage Door")
	for _, e := range []*Entity{e1, e2} {
		if err := repo.Upsert(ctx, e); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"kitchen", 1},  // matches entity_id and friendly_name
		{"garage", 1},   // matches friendly_name
		{"door", 1},     // substring of both columns of e2
		{"nothing", 0},  // no match
		{"%", 0},        // wildcard escaped, no literal percent present
	}

	for _, tt := range tests {
		got, err := repo.Search(ctx, tt.query)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", tt.query, err)
		}
		if len(got) != tt.want {
			t.Errorf("Search(%q): got %d results, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestSQLiteRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "light.nonexistent"); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("GetByID: got %v, want ErrEntityNotFound", err)
	}
}
