package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FMEDA_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != ":50051" || cfg.Server.HTTPAddress != ":8080" {
		t.Fatalf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Standards.DefaultStandard != "SN29500" || cfg.Calculation.Concurrency != 4 {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Standards, cfg.Calculation)
	}
	if cfg.Cache.Enabled {
		t.Fatalf("expected cache disabled by default")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  address: ":6000"
database:
  dsn: "postgres://file"
calculation:
  concurrency: 8
cache:
  enabled: true
  addr: "localhost:6379"
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FMEDA_DATABASE_DSN", "postgres://env")
	t.Setenv("FMEDA_CACHE_RESULT_TTL", "45s")
	t.Setenv("FMEDA_LOG_FORMAT", "json")
	t.Setenv("FMEDA_CONCURRENCY", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != ":6000" || cfg.Server.HTTPAddress != ":8080" {
		t.Fatalf("expected file value over default, got %+v", cfg.Server)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Fatalf("expected env override, got %q", cfg.Database.DSN)
	}
	if cfg.Cache.ResultTTL != 45*time.Second || !cfg.Logging.JSON {
		t.Fatalf("unexpected overrides %+v %+v", cfg.Cache, cfg.Logging)
	}
	if cfg.Calculation.Concurrency != 8 {
		t.Fatalf("expected malformed env value to be ignored, got %d", cfg.Calculation.Concurrency)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("FMEDA_CONFIG", "")
	t.Setenv("FMEDA_CACHE_ENABLED", "true")
	t.Setenv("FMEDA_CACHE_ADDR", "")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected enabled cache without addr to fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load("../../configs/config.example.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Standards.DefaultStandard != "SN29500" || cfg.Cache.ResultTTL != 2*time.Minute {
		t.Fatalf("unexpected example config %+v", cfg)
	}
}
