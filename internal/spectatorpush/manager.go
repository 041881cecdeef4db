package spectatorpush

import (
	"context"
	"sync"
	"time"

	"sueca-referee/internal/referee"
	"sueca-referee/internal/referee/stream"
	"sueca-referee/internal/spectatorpush/platforms"

	"github.com/rs/zerolog/log"
)

// Manager follows every open table's event buffer and forwards matching
// events to webhook targets through a worker pool.
type Manager struct {
	cfg      Config
	router   Router
	adapters map[string]platforms.Adapter

	dispatchCh chan pushJob
	breaker    *circuitBreaker
	done       chan struct{}

	// flushMu serialises panel flushes; mu guards everything below it.
	flushMu    sync.Mutex
	mu         sync.Mutex
	started    bool
	following  map[string]*tableFollower
	panelByKey map[string]*tablePanel
}

func (c Config) withDefaults() Config {
	positive := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	positiveDur := func(v *time.Duration, def time.Duration) {
		if *v <= 0 {
			*v = def
		}
	}
	positive(&c.Workers, 4)
	positive(&c.DispatchBuffer, 2048)
	positive(&c.PanelRecentRounds, 5)
	positive(&c.FailureThreshold, 3)
	positiveDur(&c.RetryBase, 500*time.Millisecond)
	positiveDur(&c.PanelUpdateInterval, time.Second)
	positiveDur(&c.CircuitOpenDuration, 30*time.Second)
	positiveDur(&c.RequestTimeout, 5*time.Second)
	return c
}

func NewManager(cfg Config) *Manager {
	cfg = cfg.withDefaults()
	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	return &Manager{
		cfg: cfg,
		adapters: map[string]platforms.Adapter{
			"discord": platforms.NewDiscordAdapter(client),
			"feishu":  platforms.NewFeishuAdapter(client),
		},
		dispatchCh: make(chan pushJob, cfg.DispatchBuffer),
		breaker:    newCircuitBreaker(cfg.FailureThreshold, cfg.CircuitOpenDuration),
		done:       make(chan struct{}),
		following:  map[string]*tableFollower{},
		panelByKey: map[string]*tablePanel{},
	}
}

// Start launches the workers, the panel flusher and, with a config path, the
// targets file watcher. Everything stops when ctx ends.
func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}
	m.mu.Lock()
	already := m.started
	m.started = true
	m.mu.Unlock()
	if already {
		return nil
	}

	for range m.cfg.Workers {
		go m.worker(ctx)
	}
	if m.cfg.ConfigPath != "" {
		go m.watchTargets(ctx)
	}
	go m.flushPanelsLoop(ctx)
	go func() {
		<-ctx.Done()
		close(m.done)
		m.unfollowAll()
	}()
	log.Info().
		Int("workers", m.cfg.Workers).
		Int("targets", len(m.currentTargets())).
		Msg("spectator push started")
	return nil
}

func (m *Manager) handleEvent(meta referee.TableMeta, raw stream.StreamEvent) {
	if raw.Event == "" || raw.Event == "ping" {
		return
	}
	ev := normalizeEvent(meta, raw)
	closing := ev.EventType == referee.EventTableClosed
	for _, target := range m.router.MatchTargets(m.currentTargets(), ev) {
		if target.Mode == ModePanel {
			m.accumulatePanel(target, ev)
			if closing {
				m.flushDirtyPanels()
			}
			continue
		}
		formatted, ok := FormatMessage(ev)
		if !ok {
			continue
		}
		if !m.enqueue(pushJob{Target: target, Event: ev, Formatted: formatted}) {
			metricPushDropped.Add(1)
		}
	}
}

func (m *Manager) enqueue(job pushJob) bool {
	select {
	case <-m.done:
		return false
	case m.dispatchCh <- job:
		metricPushQueued.Add(1)
		metricPushQueueDepth.Set(int64(len(m.dispatchCh)))
		return true
	default:
		return false
	}
}

func (m *Manager) currentTargets() []PushTarget {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PushTarget(nil), m.cfg.Targets...)
}

func (m *Manager) setTargets(targets []PushTarget) {
	m.mu.Lock()
	m.cfg.Targets = targets
	m.mu.Unlock()
}
