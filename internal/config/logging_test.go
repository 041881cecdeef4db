package config

import "testing"

func TestLoadLogDefaults(t *testing.T) {
	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "info" {
		t.Fatalf("Level = %q, want info", cfg.Level)
	}
	if cfg.MaxMB != 10 || cfg.Backups != 1 || cfg.Caller {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadLogRejectsBadRotation(t *testing.T) {
	t.Setenv("LOG_FILE", "referee.log")
	t.Setenv("LOG_MAX_MB", "0")

	if _, err := LoadLog(); err == nil {
		t.Fatal("LoadLog() expected error for LOG_MAX_MB=0")
	}
}

func TestLoadLogParse(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "debug" || !cfg.Pretty || cfg.SampleEvery != 5 {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
}

func TestLoadAppComposes(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp() error = %v", err)
	}
	if cfg.Server.HTTPAddr != ":9090" || cfg.Log.Level != "warn" {
		t.Fatalf("unexpected app config: %+v", cfg)
	}
}

func TestLoadAppRejectsUnknownDrainPolicy(t *testing.T) {
	t.Setenv("DRAIN_POLICY", "sometimes")

	if _, err := LoadApp(); err == nil {
		t.Fatal("LoadApp() expected error, got nil")
	}
}

func TestServerTableRules(t *testing.T) {
	cfg := ServerConfig{DrainPolicy: "none", RevealTrump: true, TableIdleTimeoutMs: 1500}
	rules, drain := cfg.TableRules()
	if !rules.RevealTrump || drain != "none" {
		t.Fatalf("TableRules() = %+v, %q", rules, drain)
	}
	if cfg.IdleTimeout().Milliseconds() != 1500 {
		t.Fatalf("IdleTimeout() = %v, want 1.5s", cfg.IdleTimeout())
	}
}
