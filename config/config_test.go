package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PatrickOgilvie/honertia/config"
)

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestLoad_ValidConfig(t *testing.T) {
	cfg := writeAndLoad(t, `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 15s

database:
  path: "app.db"

auth:
  jwt_secret: "s3cret"
  expiration: 2h

schema:
  - name: projects
    columns: [id, name]
  - name: tasks
    columns: [id, title, project_id]
`)

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Host = %s, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Path != "app.db" {
		t.Errorf("Database.Path = %s", cfg.Database.Path)
	}
	if cfg.Auth.Expiration != 2*time.Hour {
		t.Errorf("Auth.Expiration = %v", cfg.Auth.Expiration)
	}
	if len(cfg.Schema) != 2 {
		t.Errorf("Schema = %d collections, want 2", len(cfg.Schema))
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, `{}`)

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default Host = %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Port = %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default Logging = %+v", cfg.Logging)
	}
	if cfg.Auth.Expiration != 24*time.Hour {
		t.Errorf("default Expiration = %v", cfg.Auth.Expiration)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("default Metrics.Path = %s", cfg.Metrics.Path)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HONERTIA_SERVER_PORT", "3333")
	t.Setenv("HONERTIA_LOG_LEVEL", "debug")

	cfg := writeAndLoad(t, `
server:
  port: 9090
`)

	if cfg.Server.Port != 3333 {
		t.Errorf("Port = %d, env must override file", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %s", cfg.Logging.Level)
	}
}

func TestLoad_ExpandsEnvInValues(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "/var/lib/app.db")

	cfg := writeAndLoad(t, `
database:
  path: "${TEST_DB_PATH}"
`)

	if cfg.Database.Path != "/var/lib/app.db" {
		t.Errorf("Path = %s", cfg.Database.Path)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad log level", "logging:\n  level: verbose\n"},
		{"nameless collection", "schema:\n  - columns: [id]\n"},
		{"columnless collection", "schema:\n  - name: projects\n"},
		{"duplicate collection", "schema:\n  - name: projects\n    columns: [id]\n  - name: projects\n    columns: [id]\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := config.Load(path); err == nil {
				t.Error("Load should reject this config")
			}
		})
	}
}

func TestLoadWithFallback_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("HONERTIA_SERVER_PORT", "4040")

	cfg, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback: %v", err)
	}
	if cfg.Server.Port != 4040 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func TestSchemaMap(t *testing.T) {
	cfg := writeAndLoad(t, `
schema:
  - name: projects
    columns: [id, name]
`)

	m := cfg.SchemaMap()
	if !m.Configured() {
		t.Fatal("SchemaMap should be configured")
	}
	c, ok := m.Collection("projects")
	if !ok || !c.HasColumn("name") {
		t.Errorf("projects collection = %+v, ok = %v", c, ok)
	}

	empty := (&config.Config{}).SchemaMap()
	if empty.Configured() {
		t.Error("empty schema must yield an unconfigured map")
	}
}
