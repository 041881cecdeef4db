package spectatorpush

import (
	"context"
	"sync"
	"testing"
	"time"

	"sueca-referee/internal/spectatorpush/platforms"
)

// panelAdapter records sends and panel cleanups.
type panelAdapter struct {
	mu        sync.Mutex
	sent      int
	forgotten []string
}

func (a *panelAdapter) Name() string { return "panel" }

func (a *panelAdapter) Send(context.Context, string, string, platforms.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent++
	return nil
}

func (a *panelAdapter) ForgetPanel(_ string, panelKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forgotten = append(a.forgotten, panelKey)
}

func (a *panelAdapter) state() (int, []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sent, append([]string(nil), a.forgotten...)
}

func startManager(t *testing.T, cfg Config, name string, adapter platforms.Adapter) *Manager {
	t.Helper()
	m := NewManager(cfg)
	m.adapters = map[string]platforms.Adapter{name: adapter}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start manager: %v", err)
	}
	return m
}

func oneTarget(platform string) []PushTarget {
	return []PushTarget{{Platform: platform, Endpoint: "https://example.com", ScopeType: "all", Enabled: true}}
}

func TestRetryDelayDoublesUpToCap(t *testing.T) {
	base := 100 * time.Millisecond
	cases := map[int]time.Duration{
		0:  base,
		1:  base,
		2:  2 * base,
		3:  4 * base,
		20: maxRetryDelay,
	}
	for attempt, want := range cases {
		if got := retryDelay(base, attempt); got != want {
			t.Fatalf("retryDelay(%d) = %s, want %s", attempt, got, want)
		}
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	b := newCircuitBreaker(2, time.Minute)
	now := time.Now()
	if b.failure("k", now) {
		t.Fatal("opened after one failure")
	}
	if !b.failure("k", now) {
		t.Fatal("expected second failure to open the circuit")
	}
	if err := b.allow("k", now.Add(time.Second)); err != errCircuitOpen {
		t.Fatalf("allow while open = %v", err)
	}
	if err := b.allow("other", now); err != nil {
		t.Fatalf("other key blocked: %v", err)
	}
	if err := b.allow("k", now.Add(2*time.Minute)); err != nil {
		t.Fatalf("allow after open window = %v", err)
	}
	b.success("k")
	if b.failure("k", now) {
		t.Fatal("success should reset the failure count")
	}
}

func TestRetryStopsAtMaxAttempts(t *testing.T) {
	cfg := Config{Enabled: true, Targets: oneTarget("fake"), Workers: 1, RetryMax: 1, RetryBase: 5 * time.Millisecond}
	fake := &fakeAdapter{forceFail: true}
	m := startManager(t, cfg, "fake", fake)

	if !m.enqueue(pushJob{Target: cfg.Targets[0], Formatted: FormattedMessage{Title: "x"}}) {
		t.Fatal("enqueue failed")
	}
	time.Sleep(120 * time.Millisecond)
	if got := fake.Calls(); got != 2 {
		t.Fatalf("expected the first attempt and one retry, got %d calls", got)
	}
}

func TestCircuitOpenSkipsSubsequentSends(t *testing.T) {
	cfg := Config{
		Enabled:             true,
		Targets:             oneTarget("fake"),
		Workers:             1,
		RetryBase:           5 * time.Millisecond,
		FailureThreshold:    1,
		CircuitOpenDuration: 500 * time.Millisecond,
	}
	fake := &fakeAdapter{forceFail: true}
	m := startManager(t, cfg, "fake", fake)

	job := pushJob{Target: cfg.Targets[0], Formatted: FormattedMessage{Title: "x"}}
	if !m.enqueue(job) {
		t.Fatal("enqueue first failed")
	}
	waitCalls(t, fake, 1)
	if !m.enqueue(job) {
		t.Fatal("enqueue second failed")
	}
	time.Sleep(80 * time.Millisecond)
	if got := fake.Calls(); got != 1 {
		t.Fatalf("expected the open circuit to skip the second send, got %d calls", got)
	}
}

func TestTerminalPanelForgetsMessage(t *testing.T) {
	cfg := Config{Enabled: true, Targets: oneTarget("panel"), Workers: 1, RetryBase: 5 * time.Millisecond}
	adapter := &panelAdapter{}
	m := startManager(t, cfg, "panel", adapter)

	key := targetKey(cfg.Targets[0]) + "|table_1"
	if !m.enqueue(pushJob{
		Target:        cfg.Targets[0],
		PanelTerminal: true,
		Formatted:     FormattedMessage{PanelKey: key, Title: "closed"},
	}) {
		t.Fatal("enqueue failed")
	}
	time.Sleep(80 * time.Millisecond)
	sent, forgotten := adapter.state()
	if sent != 1 {
		t.Fatalf("expected one send, got %d", sent)
	}
	if len(forgotten) != 1 || forgotten[0] != key {
		t.Fatalf("forgotten panels = %q", forgotten)
	}
}
