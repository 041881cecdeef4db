package stream

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

type StreamEvent struct {
	EventID  string `json:"event_id"`
	Event    string `json:"event"`
	TableID  string `json:"table_id"`
	Round    int    `json:"round,omitempty"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data"`

	seq int64
}

const subscriberBacklog = 64

// EventBuffer keeps the most recent events of one table in a ring for replay
// and fans new ones out to subscribers. A subscriber whose backlog is full
// misses events; the table never waits on it.
type EventBuffer struct {
	mu      sync.Mutex
	tableID string
	seq     int64
	ring    []StreamEvent
	start   int
	count   int
	subs    map[chan StreamEvent]struct{}
	closed  bool
}

func NewEventBuffer(tableID string, size int) *EventBuffer {
	if size <= 0 {
		size = 500
	}
	return &EventBuffer{
		tableID: tableID,
		ring:    make([]StreamEvent, size),
		subs:    map[chan StreamEvent]struct{}{},
	}
}

func (b *EventBuffer) TableID() string {
	return b.tableID
}

// Append stamps and records an event. It returns false once the buffer is
// closed.
func (b *EventBuffer) Append(event string, round int, data any) (StreamEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return StreamEvent{}, false
	}
	b.seq++
	ev := StreamEvent{
		EventID:  strconv.FormatInt(b.seq, 10),
		Event:    event,
		TableID:  b.tableID,
		Round:    round,
		ServerTS: time.Now().UnixMilli(),
		Data:     data,
		seq:      b.seq,
	}
	if b.count < len(b.ring) {
		b.ring[(b.start+b.count)%len(b.ring)] = ev
		b.count++
	} else {
		b.ring[b.start] = ev
		b.start = (b.start + 1) % len(b.ring)
	}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev, true
}

func (b *EventBuffer) at(i int) StreamEvent {
	return b.ring[(b.start+i)%len(b.ring)]
}

// ReplayAfter returns the held events newer than lastEventID, oldest first.
// An empty or unparsable id replays everything still held.
func (b *EventBuffer) ReplayAfter(lastEventID string) []StreamEvent {
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if err != nil {
		last = 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	from := sort.Search(b.count, func(i int) bool { return b.at(i).seq > last })
	out := make([]StreamEvent, 0, b.count-from)
	for i := from; i < b.count; i++ {
		out = append(out, b.at(i))
	}
	return out
}

func (b *EventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Subscribe returns a channel of future events. On a closed buffer the
// channel comes back already closed.
func (b *EventBuffer) Subscribe() chan StreamEvent {
	ch := make(chan StreamEvent, subscriberBacklog)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

func (b *EventBuffer) Unsubscribe(ch chan StreamEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

func (b *EventBuffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Close ends every subscription. Held events stay available for replay.
func (b *EventBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
