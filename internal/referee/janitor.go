package referee

import (
	"context"
	"time"
)

// StartJanitor closes tables that have not received a card for longer than
// the configured idle timeout. It is a no-op without a timeout.
func (c *Coordinator) StartJanitor(ctx context.Context, interval time.Duration) {
	if c.opts.IdleTimeout <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.closeIdle(now)
			}
		}
	}()
}

func (c *Coordinator) closeIdle(now time.Time) int {
	c.mu.Lock()
	var idle []*tableRuntime
	for _, rt := range c.tables {
		if now.Sub(rt.idleSince()) > c.opts.IdleTimeout {
			idle = append(idle, rt)
		}
	}
	c.mu.Unlock()
	for _, rt := range idle {
		rt.close(closeReasonIdle)
	}
	return len(idle)
}
