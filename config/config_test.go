package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("STATUS_POLL_INTERVAL", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Restaurant.StatusPollInterval != time.Minute {
		t.Errorf("status poll interval = %v, want 1m", cfg.Restaurant.StatusPollInterval)
	}
	if cfg.DB.Port != 5432 {
		t.Errorf("db port = %d, want 5432", cfg.DB.Port)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
storage: memory
database:
  host: db.internal
  port: 6543
restaurant:
  time_zone: UTC
  status_poll_interval: 30s
telegram:
  staff_chat_id: 42
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("DB_PORT", "")
	t.Setenv("STATUS_POLL_INTERVAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage != "memory" {
		t.Errorf("storage = %q, want memory", cfg.Storage)
	}
	if cfg.DB.Host != "override.internal" {
		t.Errorf("db host = %q, env should win over file", cfg.DB.Host)
	}
	if cfg.DB.Port != 6543 {
		t.Errorf("db port = %d, want 6543 from file", cfg.DB.Port)
	}
	if cfg.Restaurant.StatusPollInterval != 30*time.Second {
		t.Errorf("poll interval = %v, want 30s", cfg.Restaurant.StatusPollInterval)
	}
	if cfg.Telegram.StaffChatID != 42 {
		t.Errorf("staff chat = %d, want 42", cfg.Telegram.StaffChatID)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SESSION_TTL", "forever")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed SESSION_TTL")
	}
}

func TestDatabaseURL(t *testing.T) {
	c := DBConfig{Host: "h", Port: 1, User: "u", Password: "p", Database: "d"}
	if got, want := c.DatabaseURL(), "postgres://u:p@h:1/d"; got != want {
		t.Errorf("DatabaseURL() = %q, want %q", got, want)
	}
}
