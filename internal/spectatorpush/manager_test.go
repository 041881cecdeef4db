package spectatorpush

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"sueca-referee/internal/referee"
	"sueca-referee/internal/referee/stream"
	"sueca-referee/internal/spectatorpush/platforms"
)

type fakeAdapter struct {
	mu        sync.Mutex
	calls     int
	failFirst int
	forceFail bool
	messages  []platforms.Message
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) Send(_ context.Context, _ string, _ string, msg platforms.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = append(f.messages, msg)
	if f.forceFail || f.calls <= f.failFirst {
		return errors.New("fail")
	}
	return nil
}

func (f *fakeAdapter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAdapter) Messages() []platforms.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]platforms.Message, len(f.messages))
	copy(out, f.messages)
	return out
}

func (f *fakeAdapter) SetForceFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forceFail = v
}

func waitCalls(t *testing.T, f *fakeAdapter, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if f.Calls() >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected at least %d calls, got %d", n, f.Calls())
}

func invalidatedEvent(tableID string, round int) stream.StreamEvent {
	return stream.StreamEvent{
		EventID:  strconv.Itoa(round),
		Event:    referee.EventRoundInvalidated,
		TableID:  tableID,
		Round:    round,
		ServerTS: time.Now().UnixMilli(),
		Data: referee.RoundSummary{
			Round:    round,
			Leader:   "player1",
			Status:   referee.EventRoundInvalidated,
			Reason:   "reneged",
			Offender: "player2",
			Card:     "4♥",
			Trick:    2,
			Plays:    5,
		},
	}
}

func TestManagerRetryThenSuccess(t *testing.T) {
	cfg := Config{
		Enabled:   true,
		Targets:   oneTarget("fake"),
		Workers:   1,
		RetryMax:  2,
		RetryBase: 5 * time.Millisecond,
	}
	fake := &fakeAdapter{failFirst: 1}
	m := startManager(t, cfg, "fake", fake)
	ok := m.enqueue(pushJob{
		Target:    cfg.Targets[0],
		Event:     NormalizedEvent{EventType: referee.EventRoundComplete, TableID: "t"},
		Formatted: FormattedMessage{Title: "title", Description: "summary"},
	})
	if !ok {
		t.Fatal("expected enqueue success")
	}
	waitCalls(t, fake, 2)
}

func TestNormalizeEventReadsVerdict(t *testing.T) {
	ev := normalizeEvent(referee.TableMeta{TableID: "t1"}, invalidatedEvent("", 3))
	if ev.TableID != "t1" || ev.Round != 3 {
		t.Fatalf("ids = %s/%d", ev.TableID, ev.Round)
	}
	if ev.Reason != "reneged" || ev.Offender != "player2" || ev.Card != "4♥" || ev.Trick != 2 || ev.Plays != 5 {
		t.Fatalf("normalized = %+v", ev)
	}

	closed := normalizeEvent(referee.TableMeta{TableID: "t1"}, stream.StreamEvent{
		Event: referee.EventTableClosed,
		Round: 4,
		Data:  referee.TableClosedData{Reason: "idle_timeout", Rounds: 4},
	})
	if closed.CloseReason != "idle_timeout" || closed.Reason != "" || closed.Round != 4 {
		t.Fatalf("closed = %+v", closed)
	}
}

func TestDefaultAllowlistSkipsPlayByPlay(t *testing.T) {
	cfg := Config{
		Enabled:   true,
		Targets:   []PushTarget{{Platform: "fake", Endpoint: "https://example.com", Mode: ModeMessage, ScopeType: "all", Enabled: true}},
		Workers:   1,
		RetryBase: 5 * time.Millisecond,
	}
	fake := &fakeAdapter{}
	m := startManager(t, cfg, "fake", fake)

	meta := referee.TableMeta{TableID: "t1"}
	m.handleEvent(meta, stream.StreamEvent{Event: referee.EventCardPlayed, TableID: "t1", Round: 1,
		Data: referee.CardPlayedData{Trick: 1, Position: 0, Seat: "player1", Card: "A♥"}})
	m.handleEvent(meta, invalidatedEvent("t1", 1))

	waitCalls(t, fake, 1)
	time.Sleep(40 * time.Millisecond)
	msgs := fake.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want only the verdict", len(msgs))
	}
	if !msgs[0].Alert || !strings.HasPrefix(msgs[0].Title, "RENUNCIA") {
		t.Fatalf("verdict message = %+v", msgs[0])
	}
}

func TestConfigFileAutoReloadAppliesWithoutRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.json")
	if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
		t.Fatalf("write initial targets: %v", err)
	}

	cfg := Config{
		Enabled:      true,
		ConfigPath:   path,
		ConfigReload: 20 * time.Millisecond,
		Workers:      1,
		RetryBase:    5 * time.Millisecond,
	}
	fake := &fakeAdapter{}
	m := startManager(t, cfg, "fake", fake)

	meta := referee.TableMeta{TableID: "table_1"}
	event := invalidatedEvent("table_1", 1)

	m.handleEvent(meta, event)
	time.Sleep(40 * time.Millisecond)
	if fake.Calls() != 0 {
		t.Fatalf("expected no calls before config reload, got %d", fake.Calls())
	}

	updated := `[{"platform":"fake","endpoint":"https://example.com","scope_type":"table","scope_value":"table_1","enabled":true}]`
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("write updated targets: %v", err)
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if len(m.currentTargets()) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(m.currentTargets()) != 1 {
		t.Fatal("expected reloaded targets in manager")
	}

	m.handleEvent(meta, event)
	waitCalls(t, fake, 1)
}

func TestPanelsCoalesceAndUseFixedPanelKey(t *testing.T) {
	cfg := Config{
		Enabled: true,
		Targets: []PushTarget{{
			Platform: "discord", Endpoint: "https://example.com", Mode: ModePanel,
			ScopeType: "table", ScopeValue: "table_1", EventAllowlist: []string{"*"}, Enabled: true,
		}},
		Workers:             1,
		RetryBase:           5 * time.Millisecond,
		PanelUpdateInterval: 50 * time.Millisecond,
		PanelRecentRounds:   5,
	}
	fake := &fakeAdapter{}
	m := startManager(t, cfg, "discord", fake)

	meta := referee.TableMeta{TableID: "table_1"}
	m.handleEvent(meta, stream.StreamEvent{Event: referee.EventRoundStarted, TableID: "table_1", Round: 1, Data: referee.RoundStartedData{Leader: "player1"}})
	m.handleEvent(meta, stream.StreamEvent{Event: referee.EventTrumpSet, TableID: "table_1", Round: 1, Data: referee.TrumpSetData{Card: "A♥", Suit: "♥"}})
	for i, card := range []string{"A♥", "2♣", "3♥"} {
		m.handleEvent(meta, stream.StreamEvent{
			EventID: "e" + strconv.Itoa(i),
			Event:   referee.EventCardPlayed,
			TableID: "table_1",
			Round:   1,
			Data:    referee.CardPlayedData{Trick: 1, Position: i, Seat: "player" + strconv.Itoa(i+1), Card: card},
		})
	}
	m.handleEvent(meta, stream.StreamEvent{Event: referee.EventSuitVoid, TableID: "table_1", Round: 1, Data: referee.SuitVoidData{Seat: "player2", Suit: "♥"}})

	time.Sleep(180 * time.Millisecond)
	if fake.Calls() != 1 {
		t.Fatalf("expected coalesced one send, got %d", fake.Calls())
	}
	msg := fake.Messages()[0]
	if msg.PanelKey == "" {
		t.Fatal("expected panel message with panel key")
	}
	fields := map[string]string{}
	for _, f := range msg.Fields {
		fields[f.Name] = f.Value
	}
	if fields["👑 Trump"] != "A♥" || fields["🚫 Voids"] != "player2 ♥" || !strings.Contains(fields["⚡ Last Play"], "3♥") {
		t.Fatalf("panel fields = %v", fields)
	}
}

func TestPanelResendAfterDrop(t *testing.T) {
	cfg := Config{
		Enabled:             true,
		Targets:             []PushTarget{{Platform: "discord", Endpoint: "https://example.com", Mode: ModePanel, ScopeType: "all", Enabled: true}},
		Workers:             1,
		RetryBase:           5 * time.Millisecond,
		PanelUpdateInterval: 30 * time.Millisecond,
	}
	fake := &fakeAdapter{forceFail: true}
	m := startManager(t, cfg, "discord", fake)

	m.handleEvent(referee.TableMeta{TableID: "table_drop"}, invalidatedEvent("table_drop", 1))

	time.Sleep(120 * time.Millisecond)
	if fake.Calls() == 0 {
		t.Fatal("expected at least one failed send attempt")
	}

	fake.SetForceFail(false)
	time.Sleep(150 * time.Millisecond)
	if fake.Calls() < 2 {
		t.Fatalf("expected resend after recovery, got calls=%d", fake.Calls())
	}
}

func TestManagerFollowsCoordinatorTables(t *testing.T) {
	cfg := Config{
		Enabled:   true,
		Targets:   oneTarget("fake"),
		Workers:   1,
		RetryBase: 5 * time.Millisecond,
	}
	fake := &fakeAdapter{}
	m := startManager(t, cfg, "fake", fake)

	coord := referee.NewCoordinator(referee.Options{Drain: "none"})
	coord.SetTableLifecycleObserver(m)
	info, err := coord.CreateTable(context.Background(), referee.TableSpec{})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := coord.SubmitCard(context.Background(), info.TableID, "9♣"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitCalls(t, fake, 1)
	if err := coord.CloseTable(context.Background(), info.TableID); err != nil {
		t.Fatalf("close table: %v", err)
	}
	waitCalls(t, fake, 2)

	msgs := fake.Messages()
	if !strings.HasPrefix(msgs[0].Title, "RENUNCIA") || !strings.HasPrefix(msgs[1].Title, "Table Closed") {
		t.Fatalf("titles = %q, %q", msgs[0].Title, msgs[1].Title)
	}
}
