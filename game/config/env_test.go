package config

import (
	"testing"
	"time"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.Port != 8080 || cfg.Host != "localhost" {
		t.Errorf("Unexpected listen defaults: %s", cfg.Addr())
	}
	if cfg.Storage != StorageFile || !cfg.AutoSave {
		t.Errorf("Unexpected storage defaults: %+v", cfg)
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Errorf("Expected 100ms tick, got %v", cfg.TickInterval)
	}
}

func TestLoadServerConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SAVE_STORAGE", "sqlite")
	t.Setenv("TICK_INTERVAL", "0s")
	t.Setenv("AUTO_SAVE", "false")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("LoadServerConfig failed: %v", err)
	}
	if cfg.Addr() != "localhost:9090" {
		t.Errorf("Expected localhost:9090, got %s", cfg.Addr())
	}
	if cfg.Storage != StorageSQLite || cfg.AutoSave || cfg.TickInterval != 0 {
		t.Errorf("Env overrides not applied: %+v", cfg)
	}
}

func TestLoadServerConfigInvalid(t *testing.T) {
	tests := map[string][2]string{
		"bad storage": {"SAVE_STORAGE", "redis"},
		"bad port":    {"PORT", "70000"},
		"not a port":  {"PORT", "http"},
		"negative":    {"TICK_INTERVAL", "-1s"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := LoadServerConfig(); err == nil {
				t.Errorf("Expected an error for %s=%s", kv[0], kv[1])
			}
		})
	}
}
