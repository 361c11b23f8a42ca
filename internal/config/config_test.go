package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
storage:
  type: minio
leaderboard:
  default_size: 0
`)
	t.Setenv("SECRET_KEY", "dev-secret")
	t.Setenv("DATABASE_URL", "file:test.db")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.Secret != "dev-secret" || cfg.Database.DSN != "file:test.db" {
		t.Fatalf("env bindings not applied: %+v %+v", cfg.Session, cfg.Database)
	}
	if cfg.Session.ExpireTime != 24*time.Hour {
		t.Fatalf("expire: got=%v want=24h", cfg.Session.ExpireTime)
	}
	if cfg.Leaderboard.DefaultSize != 8 || cfg.Leaderboard.MaxSize != 100 {
		t.Fatalf("leaderboard: %+v", cfg.Leaderboard)
	}
	if cfg.Session.CookieName != "session" || cfg.Server.Port != "5555" {
		t.Fatalf("defaults: cookie=%q port=%q", cfg.Session.CookieName, cfg.Server.Port)
	}
	if cfg.ConfigFile == "" {
		t.Fatalf("config file path should be recorded for the watcher")
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	dir := writeConfig(t, "storage:\n  type: minio\n")
	t.Setenv("SECRET_KEY", "")

	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("expected error without SECRET_KEY")
	}
}

func TestReleaseModeRequiresLongSecret(t *testing.T) {
	dir := writeConfig(t, "server:\n  mode: release\nstorage:\n  type: minio\n")
	t.Setenv("SECRET_KEY", "short")

	if _, err := LoadConfig(dir); err == nil {
		t.Fatalf("expected error for short secret in release mode")
	}
}
