package inventory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the inventory tables.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE areas (
			area_id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			aliases TEXT NOT NULL DEFAULT '[]',
			floor TEXT,
			icon TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE TABLE devices (
			device_id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			manufacturer TEXT,
			model TEXT,
			sw_version TEXT,
			configuration_url TEXT,
			connections TEXT NOT NULL DEFAULT '[]',
			identifiers TEXT NOT NULL DEFAULT '[]',
			via_device_id TEXT,
			area_id TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_devices_area ON devices(area_id);
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

func TestSQLiteRepository_UpsertArea(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	area := &Area{
		AreaID:  "kitchen",
		Name:    "Kitchen",
		Aliases: []string{"Cookhouse"},
		Floor:   strPtr("ground"),
		Icon:    strPtr("mdi:fridge"),
	}

	if err := repo.UpsertArea(ctx, area); err != nil {
		t.Fatalf("UpsertArea failed: %v", err)
	}

	got, err := repo.GetArea(ctx, "kitchen")
	if err != nil {
		t.Fatalf("GetArea failed: %v", err)
	}
	if got.Name != "Kitchen" {
		t.Errorf("name: got %q, want Kitchen", got.Name)
	}
	if len(got.Aliases) != 1 || got.Aliases[0] != "Cookhouse" {
		t.Errorf("aliases: got %v", got.Aliases)
	}
	if got.Floor == nil || *got.Floor != "ground" {
		t.Errorf("floor: got %v", got.Floor)
	}
}

func TestSQLiteRepository_UpsertArea_Overwrite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.UpsertArea(ctx, &Area{AreaID: "kitchen", Name: "Kitchen"}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := repo.UpsertArea(ctx, &Area{AreaID: "kitchen", Name: "Renamed Kitchen"}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := repo.GetArea(ctx, "kitchen")
	if err != nil {
		t.Fatalf("GetArea failed: %v", err)
	}
	if got.Name != "Renamed Kitchen" {
		t.Errorf("name after overwrite: got %q, want Renamed Kitchen", got.Name)
	}

	areas, err := repo.ListAreas(ctx)
	if err != nil {
		t.Fatalf("ListAreas failed: %v", err)
	}
	if len(areas) != 1 {
		t.Errorf("expected 1 area after upsert, got %d", len(areas))
	}
}

func TestSQLiteRepository_UpsertArea_MissingKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.UpsertArea(ctx, &Area{Name: "No Key"}); !errors.Is(err, ErrMissingNaturalKey) {
		t.Errorf("UpsertArea: got %v, want ErrMissingNaturalKey", err)
	}
}

func TestSQLiteRepository_GetArea_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if _, err := repo.GetArea(ctx, "nonexistent"); !errors.Is(err, ErrAreaNotFound) {
		t.Errorf("GetArea: got %v, want ErrAreaNotFound", err)
	}
}

func TestSQLiteRepository_UpsertDevice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	device := &Device{
		DeviceID:     "dev-1",
		Name:         "Hue Bridge",
		Manufacturer: strPtr("Signify"),
		Model:        strPtr("BSB002"),
		Connections:  []any{[]any{"mac", "aa:bb:cc:dd:ee:ff"}},
		Identifiers:  []any{[]any{"hue", "bridge-1"}},
		AreaID:       strPtr("hallway"),
	}

	if err := repo.UpsertDevice(ctx, device); err != nil {
		t.Fatalf("UpsertDevice failed: %v", err)
	}

	got, err := repo.GetDevice(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetDevice failed: %v", err)
	}
	if got.Name != "Hue Bridge" {
		t.Errorf("name: got %q", got.Name)
	}
	if got.Manufacturer == nil || *got.Manufacturer != "Signify" {
		t.Errorf("manufacturer: got %v", got.Manufacturer)
	}
	if len(got.Connections) != 1 {
		t.Errorf("connections: got %v", got.Connections)
	}
	if got.AreaID == nil || *got.AreaID != "hallway" {
		t.Errorf("area_id: got %v", got.AreaID)
	}
}

func TestSQLiteRepository_UpsertDevice_Overwrite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.UpsertDevice(ctx, &Device{DeviceID: "dev-1", Name: "Old Name"}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := repo.UpsertDevice(ctx, &Device{DeviceID: "dev-1", Name: "New Name", AreaID: strPtr("loft")}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := repo.GetDevice(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetDevice failed: %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("name after overwrite: got %q", got.Name)
	}
	if got.AreaID == nil || *got.AreaID != "loft" {
		t.Errorf("area_id after overwrite: got %v", got.AreaID)
	}
}

func TestSQLiteRepository_UpsertDevice_MissingKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if err := repo.UpsertDevice(ctx, &Device{Name: "No Key"}); !errors.Is(err, ErrMissingNaturalKey) {
		t.Errorf("UpsertDevice: got %v, want ErrMissingNaturalKey", err)
	}
}

func TestSQLiteRepository_ListDevicesByArea(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	devices := []*Device{
		{DeviceID: "dev-1", Name: "Lamp", AreaID: strPtr("kitchen")},
		{DeviceID: "dev-2", Name: "Speaker", AreaID: strPtr("lounge")},
		{DeviceID: "dev-3", Name: "Fridge", AreaID: strPtr("kitchen")},
	}
	for _, d := range devices {
		if err := repo.UpsertDevice(ctx, d); err != nil {
			t.Fatalf("UpsertDevice failed: %v", err)
		}
	}

	kitchen, err := repo.ListDevicesByArea(ctx, "kitchen")
	if err != nil {
		t.Fatalf("ListDevicesByArea failed: %v", err)
	}
	if len(kitchen) != 2 {
		t.Fatalf("expected 2 kitchen devices, got %d", len(kitchen))
	}
	// Ordered by name: Fridge before Lamp.
	if kitchen[0].Name != "Fridge" || kitchen[1].Name != "Lamp" {
		t.Errorf("order: got %q, %q", kitchen[0].Name, kitchen[1].Name)
	}
}

func TestSQLiteRepository_GetDevice_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	if _, err := repo.GetDevice(ctx, "nonexistent"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetDevice: got %v, want ErrDeviceNotFound", err)
	}
}
