package spectatorpush

import (
	"errors"
	"sync"
	"time"
)

var errCircuitOpen = errors.New("circuit_open")

// maxRetryDelay caps the exponential backoff between attempts.
const maxRetryDelay = 30 * time.Second

type breakerState struct {
	failures  int
	openUntil time.Time
}

// circuitBreaker stops sending to a target for a while after threshold
// consecutive failures.
type circuitBreaker struct {
	mu        sync.Mutex
	threshold int
	openFor   time.Duration
	states    map[string]breakerState
}

func newCircuitBreaker(threshold int, openFor time.Duration) *circuitBreaker {
	return &circuitBreaker{threshold: threshold, openFor: openFor, states: map[string]breakerState{}}
}

func (b *circuitBreaker) allow(key string, now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if until := b.states[key].openUntil; !until.IsZero() && now.Before(until) {
		return errCircuitOpen
	}
	return nil
}

// failure records a failed send and reports whether it opened the circuit.
func (b *circuitBreaker) failure(key string, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := b.states[key]
	st.failures++
	opened := false
	if st.failures >= b.threshold {
		st.openUntil = now.Add(b.openFor)
		st.failures = 0
		opened = true
	}
	b.states[key] = st
	return opened
}

func (b *circuitBreaker) success(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.states, key)
}

func retryDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt && d < maxRetryDelay; i++ {
		d *= 2
	}
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}

// redeliverLater puts job back on the dispatch queue after delay, unless the
// manager has stopped by then.
func (m *Manager) redeliverLater(job pushJob, delay time.Duration) {
	time.AfterFunc(delay, func() {
		select {
		case <-m.done:
		case m.dispatchCh <- job:
			metricPushQueueDepth.Set(int64(len(m.dispatchCh)))
		}
	})
}
