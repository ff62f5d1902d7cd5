package config

import (
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  path: /tmp/attic-test.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/tmp/attic-test.db" {
		t.Errorf("database.path: got %q", cfg.Database.Path)
	}
	if !cfg.Database.WALMode {
		t.Error("wal_mode default should be true")
	}
	if cfg.API.Port != 8090 {
		t.Errorf("api.port default: got %d, want 8090", cfg.API.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level default: got %q, want info", cfg.Logging.Level)
	}
	if cfg.MQTT.Enabled {
		t.Error("mqtt should be disabled by default")
	}
	if cfg.InfluxDB.Enabled {
		t.Error("influxdb should be disabled by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /data/archive.db
  wal_mode: false
api:
  port: 9000
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.WALMode {
		t.Error("wal_mode should be overridden to false")
	}
	if cfg.API.Port != 9000 {
		t.Errorf("api.port: got %d, want 9000", cfg.API.Port)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("logging.format: got %q, want text", cfg.Logging.Format)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "database:\n  path: /data/from-file.db\n")

	t.Setenv("ATTIC_DATABASE_PATH", "/data/from-env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/data/from-env.db" {
		t.Errorf("database.path: got %q, want env override", cfg.Database.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load should fail for missing file")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"invalid api port", func(c *Config) { c.API.Port = 0 }},
		{"invalid qos", func(c *Config) { c.MQTT.QoS = 3 }},
		{"mqtt enabled without host", func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.Broker.Host = ""
		}},
		{"influxdb enabled without url", func(c *Config) {
			c.InfluxDB.Enabled = true
			c.InfluxDB.URL = ""
			c.InfluxDB.Bucket = "states"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should fail")
			}
		})
	}
}

func TestTimeoutAccessors(t *testing.T) {
	cfg := defaultConfig()

	if cfg.GetReadTimeout().Seconds() != 30 {
		t.Errorf("read timeout: got %v", cfg.GetReadTimeout())
	}
	if cfg.GetWriteTimeout().Seconds() != 60 {
		t.Errorf("write timeout: got %v", cfg.GetWriteTimeout())
	}
	if cfg.GetIdleTimeout().Seconds() != 120 {
		t.Errorf("idle timeout: got %v", cfg.GetIdleTimeout())
	}
}
