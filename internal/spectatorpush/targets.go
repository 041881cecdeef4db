package spectatorpush

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"sueca-referee/internal/config"
	"sueca-referee/internal/referee"
)

// Target scopes.
const (
	ScopeAll   = "all"
	ScopeTable = "table"
)

// DefaultEventAllowlist is what a target receives when it names no events.
var DefaultEventAllowlist = []string{
	referee.EventRoundComplete,
	referee.EventRoundInvalidated,
	referee.EventTableClosed,
}

// ConfigFromServer builds the push configuration. Targets come from the JSON
// file at SPECTATOR_PUSH_CONFIG_PATH, which is also watched for changes.
func ConfigFromServer(cfg config.ServerConfig) (Config, error) {
	out := Config{
		Enabled:      cfg.SpectatorPushEnabled,
		ConfigPath:   strings.TrimSpace(cfg.SpectatorPushConfigPath),
		ConfigReload: time.Second,
		Workers:      cfg.SpectatorPushWorkers,
		RetryMax:     max(cfg.SpectatorPushRetryMax, 0),
	}.withDefaults()
	if !out.Enabled || out.ConfigPath == "" {
		return out, nil
	}
	raw, err := os.ReadFile(out.ConfigPath)
	if err != nil {
		return Config{}, fmt.Errorf("read spectator push targets %q: %w", out.ConfigPath, err)
	}
	if out.Targets, err = parseTargets(raw); err != nil {
		return Config{}, err
	}
	return out, nil
}

// parseTargets decodes a JSON array of targets and keeps the usable ones:
// enabled, with an endpoint, a known scope and a known mode.
func parseTargets(raw []byte) ([]PushTarget, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var targets []PushTarget
	if err := json.Unmarshal(raw, &targets); err != nil {
		return nil, fmt.Errorf("parse spectator push targets: %w", err)
	}
	kept := targets[:0]
	for _, t := range targets {
		if t, ok := t.normalized(); ok {
			kept = append(kept, t)
		}
	}
	return kept, nil
}

func (t PushTarget) normalized() (PushTarget, bool) {
	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	t.Platform = lower(t.Platform)
	t.Endpoint = strings.TrimSpace(t.Endpoint)
	t.ScopeType = cmp.Or(lower(t.ScopeType), ScopeAll)
	t.Mode = cmp.Or(lower(t.Mode), ModeMessage)
	for i, ev := range t.EventAllowlist {
		t.EventAllowlist[i] = lower(ev)
	}
	ok := t.Enabled && t.Endpoint != "" &&
		(t.ScopeType == ScopeAll || t.ScopeType == ScopeTable) &&
		(t.Mode == ModeMessage || t.Mode == ModePanel)
	return t, ok
}

// Wants reports whether the target subscribes to ev.
func (t PushTarget) Wants(ev NormalizedEvent) bool {
	if !t.Enabled {
		return false
	}
	switch t.ScopeType {
	case ScopeAll:
	case ScopeTable:
		if t.ScopeValue == "" || t.ScopeValue != ev.TableID {
			return false
		}
	default:
		return false
	}
	allow := t.EventAllowlist
	if len(allow) == 0 {
		allow = DefaultEventAllowlist
	}
	evType := strings.ToLower(strings.TrimSpace(ev.EventType))
	return slices.ContainsFunc(allow, func(v string) bool {
		v = strings.ToLower(strings.TrimSpace(v))
		return v == "*" || (v != "" && v == evType)
	})
}

type Router struct{}

func (Router) MatchTargets(targets []PushTarget, ev NormalizedEvent) []PushTarget {
	var out []PushTarget
	for _, t := range targets {
		if t.Wants(ev) {
			out = append(out, t)
		}
	}
	return out
}
