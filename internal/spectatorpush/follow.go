package spectatorpush

import (
	"context"

	"sueca-referee/internal/referee"
	"sueca-referee/internal/referee/stream"
)

// tableFollower is the manager's subscription to one table's buffer.
type tableFollower struct {
	meta   referee.TableMeta
	buf    *stream.EventBuffer
	events chan stream.StreamEvent
	stop   context.CancelFunc
}

func (f *tableFollower) detach() {
	f.stop()
	f.buf.Unsubscribe(f.events)
}

// OnTableStarted begins forwarding a table's events. Calling it twice for the
// same table is a no-op.
func (m *Manager) OnTableStarted(meta referee.TableMeta, buf *stream.EventBuffer) {
	if !m.cfg.Enabled || buf == nil || meta.TableID == "" {
		return
	}
	m.mu.Lock()
	if _, ok := m.following[meta.TableID]; ok {
		m.mu.Unlock()
		return
	}
	ctx, stop := context.WithCancel(context.Background())
	f := &tableFollower{meta: meta, buf: buf, events: buf.Subscribe(), stop: stop}
	m.following[meta.TableID] = f
	m.mu.Unlock()

	go m.follow(ctx, f)
}

// OnTableClosed stops following a table. When its buffer is already closed
// the follower is left to drain the remaining events, table_closed included.
func (m *Manager) OnTableClosed(tableID string) {
	m.mu.Lock()
	f := m.following[tableID]
	delete(m.following, tableID)
	m.mu.Unlock()

	if f == nil || f.buf.Closed() {
		return
	}
	f.detach()
}

func (m *Manager) unfollowAll() {
	m.mu.Lock()
	followers := m.following
	m.following = map[string]*tableFollower{}
	m.panelByKey = map[string]*tablePanel{}
	m.mu.Unlock()

	for _, f := range followers {
		f.detach()
	}
}

func (m *Manager) follow(ctx context.Context, f *tableFollower) {
	defer f.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case ev, ok := <-f.events:
			if !ok {
				return
			}
			m.handleEvent(f.meta, ev)
		}
	}
}
