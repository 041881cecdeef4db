package intake

import (
	"context"
	"errors"
	"sync"

	"sueca-referee/internal/game"
)

var ErrFull = errors.New("intake_full")

// Channel is a buffered intake fed from the transport side (HTTP, websocket,
// NATS) and drained by a single game loop.
type Channel struct {
	ch   chan string
	done chan struct{}
	once sync.Once
}

func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = 64
	}
	return &Channel{ch: make(chan string, buffer), done: make(chan struct{})}
}

// Push queues an identifier, waiting for room until ctx is done.
func (c *Channel) Push(ctx context.Context, id string) error {
	select {
	case <-c.done:
		return game.ErrIntakeClosed
	default:
	}
	select {
	case c.ch <- id:
		return nil
	case <-c.done:
		return game.ErrIntakeClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPush queues an identifier without waiting.
func (c *Channel) TryPush(id string) error {
	select {
	case <-c.done:
		return game.ErrIntakeClosed
	default:
	}
	select {
	case c.ch <- id:
		return nil
	default:
		return ErrFull
	}
}

// NextCard blocks until an identifier is queued. After Close, queued
// identifiers are still delivered before ErrIntakeClosed.
func (c *Channel) NextCard(ctx context.Context) (string, error) {
	select {
	case id := <-c.ch:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		select {
		case id := <-c.ch:
			return id, nil
		default:
			return "", game.ErrIntakeClosed
		}
	}
}

// Len is the number of identifiers waiting to be read.
func (c *Channel) Len() int {
	return len(c.ch)
}

func (c *Channel) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Channel) Done() <-chan struct{} {
	return c.done
}
