package spectatorpush

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sueca-referee/internal/referee"
)

const (
	panelActive = "active"
	panelClosed = "closed"
)

// tablePanel is the single live message a panel target keeps per table,
// edited in place as the table progresses.
type tablePanel struct {
	key     string
	target  PushTarget
	tableID string

	round    int
	leader   string
	trump    string
	lastPlay string
	voids    []string
	verdicts []string
	status   string
	reason   string
	lastTS   int64

	dirty    bool
	inflight bool
	terminal bool
}

// apply folds one event into the panel. keep bounds the verdict history.
func (p *tablePanel) apply(ev NormalizedEvent, keep int) {
	p.lastTS = max(p.lastTS, ev.ServerTS)
	if ev.Round > 0 && ev.EventType != referee.EventTableClosed {
		p.round = ev.Round
	}
	switch ev.EventType {
	case referee.EventRoundStarted:
		p.leader = ev.Leader
		p.trump, p.lastPlay = "", ""
		p.voids = p.voids[:0]
	case referee.EventTrumpSet:
		p.trump = ev.Card
	case referee.EventCardPlayed:
		p.lastPlay = fmt.Sprintf("%s %s (trick %d)", ev.Seat, ev.Card, ev.Trick)
	case referee.EventSuitVoid:
		p.voids = append(p.voids, ev.Seat+" "+ev.Suit)
	case referee.EventRoundComplete, referee.EventRoundInvalidated:
		if ev.TrumpCard != "" {
			p.trump = ev.TrumpCard
		}
		p.verdicts = append(p.verdicts, verdictLine(ev))
		if over := len(p.verdicts) - keep; over > 0 {
			p.verdicts = p.verdicts[over:]
		}
	case referee.EventTableClosed:
		p.status = panelClosed
		p.reason = ev.CloseReason
	}
	p.dirty = true
}

func (p *tablePanel) lastVerdictReneged() bool {
	n := len(p.verdicts)
	return n > 0 && strings.HasPrefix(p.verdicts[n-1], "RENUNCIA")
}

func (p *tablePanel) render() FormattedMessage {
	verdicts := "No verdicts yet"
	if len(p.verdicts) > 0 {
		verdicts = strings.Join(p.verdicts, "\n")
	}
	fields := []MessageField{
		{Name: "🂠 Round", Value: roundText(p.round), Inline: true},
		{Name: "🎯 Leader", Value: fallback(p.leader, "-"), Inline: true},
		{Name: "👑 Trump", Value: fallback(p.trump, "-"), Inline: true},
		{Name: "⚡ Last Play", Value: fallback(p.lastPlay, "No card yet"), Inline: true},
		{Name: "🕒 Last Update", Value: clockText(p.lastTS), Inline: true},
	}
	if len(p.voids) > 0 {
		fields = append(fields, MessageField{Name: "🚫 Voids", Value: strings.Join(p.voids, ", ")})
	}
	if p.reason != "" {
		fields = append(fields, MessageField{Name: "⚠️ Reason", Value: p.reason})
	}
	fields = append(fields, MessageField{Name: "📜 Recent Rounds", Value: verdicts})

	msg := FormattedMessage{
		PanelKey:    p.key,
		Title:       tableLabel(p.tableID) + " | " + statusBadge(p.status),
		Description: roundText(p.round) + " | Trump " + fallback(p.trump, "-"),
		Color:       colorRound,
		Timestamp:   eventTimestamp(p.lastTS),
		Footer:      "table:" + shortID(fallback(p.tableID, "-"), 8),
		Fields:      fields,
	}
	switch {
	case p.status == panelClosed:
		msg.Color = colorCritical
	case p.lastVerdictReneged():
		msg.Color = colorCritical
		msg.Alert = true
	}
	return msg
}

func (m *Manager) accumulatePanel(target PushTarget, ev NormalizedEvent) {
	if ev.TableID == "" {
		return
	}
	key := targetKey(target) + "|" + ev.TableID

	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.panelByKey[key]
	if p == nil {
		p = &tablePanel{key: key, tableID: ev.TableID, status: panelActive}
		m.panelByKey[key] = p
	}
	if p.terminal {
		return
	}
	p.target = target
	p.apply(ev, m.cfg.PanelRecentRounds)
}

func (m *Manager) flushPanelsLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.PanelUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			m.flushDirtyPanels()
		}
	}
}

// flushDirtyPanels queues one edit per changed panel. A panel with an edit
// still in flight waits for the next tick.
func (m *Manager) flushDirtyPanels() {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	var jobs []pushJob
	m.mu.Lock()
	for key, p := range m.panelByKey {
		if !p.dirty || p.terminal || p.inflight {
			continue
		}
		p.inflight = true
		jobs = append(jobs, pushJob{
			Target:        p.target,
			Event:         NormalizedEvent{EventType: "panel_update", TableID: p.tableID},
			Formatted:     p.render(),
			PanelStateKey: key,
			PanelTerminal: p.status == panelClosed,
		})
	}
	m.mu.Unlock()

	for _, job := range jobs {
		if !m.enqueue(job) {
			metricPushDropped.Add(1)
			m.panelSettled(job, false)
		}
	}
}

// panelSettled records the outcome of a panel edit. A delivered terminal
// edit forgets the panel; a lost edit leaves it dirty for the next flush.
func (m *Manager) panelSettled(job pushJob, delivered bool) {
	if job.PanelStateKey == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.panelByKey[job.PanelStateKey]
	if p == nil {
		return
	}
	p.inflight = false
	p.dirty = !delivered
	if delivered && job.PanelTerminal {
		delete(m.panelByKey, job.PanelStateKey)
	}
}

func verdictLine(ev NormalizedEvent) string {
	if ev.EventType != referee.EventRoundInvalidated {
		return fmt.Sprintf("OK R%d trump %s", ev.Round, fallback(ev.TrumpCard, "-"))
	}
	line := fmt.Sprintf("RENUNCIA R%d %s", ev.Round, fallback(ev.Reason, "-"))
	if ev.Offender != "" {
		line += fmt.Sprintf(" by %s (%s)", ev.Offender, fallback(ev.Card, "-"))
	}
	return line
}

func roundText(n int) string {
	if n <= 0 {
		return "Waiting for cards"
	}
	return fmt.Sprintf("Round %d", n)
}

func tableLabel(tableID string) string {
	id := strings.TrimSpace(tableID)
	if id == "" {
		return "Table"
	}
	return "Table #" + id[max(len(id)-4, 0):]
}

func statusBadge(status string) string {
	switch status {
	case panelActive:
		return "🟢 Active"
	case panelClosed:
		return "🔴 Closed"
	}
	return "⚪ " + fallback(status, "unknown")
}

func clockText(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("15:04:05")
}
