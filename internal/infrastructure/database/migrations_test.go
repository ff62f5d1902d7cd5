package database

import (
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"20260402_100000_initial_schema.up.sql", "20260402_100000", true, true},
		{"20260402_100000_initial_schema.down.sql", "20260402_100000", false, true},
		{"20260402_100000_add_index.up.sql", "20260402_100000", true, true},
		{"readme.md", "", false, false},
		{"notamigration.sql", "", false, false},
		{"20260402_100000_missing_direction.sql", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version: got %q, want %q", version, tt.wantVersion)
			}
			if isUp != tt.wantUp {
				t.Errorf("isUp: got %v, want %v", isUp, tt.wantUp)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20260402_100000_initial_schema.up.sql", "initial_schema"},
		{"20260402_100000_add_services_index.down.sql", "add_services_index"},
		{"malformed.sql", "malformed"},
	}

	for _, tt := range tests {
		if got := extractMigrationName(tt.filename); got != tt.want {
			t.Errorf("extractMigrationName(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
