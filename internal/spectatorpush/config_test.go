package spectatorpush

import (
	"os"
	"path/filepath"
	"testing"

	"sueca-referee/internal/config"
)

func writeTargets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestConfigFromServerFiltersTargets(t *testing.T) {
	path := writeTargets(t, `[
	  {"platform":"Discord","endpoint":" https://a ","enabled":true},
	  {"platform":"feishu","endpoint":"","scope_type":"table","scope_value":"t1","enabled":true},
	  {"platform":"discord","endpoint":"https://b","scope_type":"room","scope_value":"mid","enabled":true},
	  {"platform":"discord","endpoint":"https://c","mode":"thread","enabled":true},
	  {"platform":"feishu","endpoint":"https://d","scope_type":"table","scope_value":"t1","mode":"PANEL","enabled":true},
	  {"platform":"feishu","endpoint":"https://e","enabled":false}
	]`)
	scfg := config.ServerConfig{
		SpectatorPushEnabled:    true,
		SpectatorPushConfigPath: path,
		SpectatorPushWorkers:    2,
		SpectatorPushRetryMax:   3,
	}
	cfg, err := ConfigFromServer(scfg)
	if err != nil {
		t.Fatalf("config parse failed: %v", err)
	}
	if cfg.Workers != 2 || cfg.RetryMax != 3 {
		t.Fatalf("workers=%d retry=%d", cfg.Workers, cfg.RetryMax)
	}
	if len(cfg.Targets) != 2 {
		t.Fatalf("expected 2 filtered targets, got %d", len(cfg.Targets))
	}
	first := cfg.Targets[0]
	if first.Platform != "discord" || first.Endpoint != "https://a" || first.ScopeType != "all" || first.Mode != ModeMessage {
		t.Fatalf("unexpected first target: %+v", first)
	}
	if cfg.Targets[1].Mode != ModePanel || cfg.Targets[1].ScopeValue != "t1" {
		t.Fatalf("unexpected panel target: %+v", cfg.Targets[1])
	}
}

func TestConfigFromServerDisabledSkipsFile(t *testing.T) {
	cfg, err := ConfigFromServer(config.ServerConfig{SpectatorPushConfigPath: "/tmp/not-exist-spectator-push.json"})
	if err != nil {
		t.Fatalf("disabled config should not read file: %v", err)
	}
	if cfg.Enabled || len(cfg.Targets) != 0 {
		t.Fatalf("unexpected disabled config: %+v", cfg)
	}
}

func TestConfigFromServerConfigPathReadError(t *testing.T) {
	scfg := config.ServerConfig{
		SpectatorPushEnabled:    true,
		SpectatorPushConfigPath: "/tmp/not-exist-spectator-push.json",
	}
	if _, err := ConfigFromServer(scfg); err == nil {
		t.Fatal("expected read error for missing config path")
	}
}

func TestConfigFromServerRejectsMalformedTargets(t *testing.T) {
	scfg := config.ServerConfig{
		SpectatorPushEnabled:    true,
		SpectatorPushConfigPath: writeTargets(t, `{"platform":"discord"}`),
	}
	if _, err := ConfigFromServer(scfg); err == nil {
		t.Fatal("expected parse error for non-array targets")
	}
}
