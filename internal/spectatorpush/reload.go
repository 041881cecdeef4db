package spectatorpush

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// watchTargets polls the targets file and swaps the target list whenever its
// content changes and still parses. A broken edit keeps the previous list.
func (m *Manager) watchTargets(ctx context.Context) {
	path := m.cfg.ConfigPath
	interval := m.cfg.ConfigReload
	if interval <= 0 {
		interval = time.Second
	}
	last, _ := os.ReadFile(path)
	last = bytes.TrimSpace(last)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			metricPushReloadErrors.Add(1)
			continue
		}
		raw = bytes.TrimSpace(raw)
		if bytes.Equal(raw, last) {
			continue
		}
		targets, err := parseTargets(raw)
		if err != nil {
			metricPushReloadErrors.Add(1)
			log.Warn().Err(err).Str("path", path).Msg("spectator push targets reload failed")
			continue
		}
		m.setTargets(targets)
		last = raw
		metricPushTargetsReload.Add(1)
		log.Info().Int("targets", len(targets)).Str("path", path).Msg("spectator push targets reloaded")
	}
}
