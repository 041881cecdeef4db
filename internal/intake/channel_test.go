package intake

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sueca-referee/internal/game"
)

func TestChannelDeliversInOrderThenCloses(t *testing.T) {
	c := NewChannel(4)
	ctx := context.Background()
	for _, id := range []string{"A♣", "2♣", "3♣"} {
		if err := c.Push(ctx, id); err != nil {
			t.Fatalf("Push(%s) error = %v", id, err)
		}
	}
	c.Close()
	if err := c.Push(ctx, "4♣"); !errors.Is(err, game.ErrIntakeClosed) {
		t.Fatalf("Push after Close = %v, want ErrIntakeClosed", err)
	}
	for _, want := range []string{"A♣", "2♣", "3♣"} {
		got, err := c.NextCard(ctx)
		if err != nil || got != want {
			t.Fatalf("NextCard() = %q, %v; want %q", got, err, want)
		}
	}
	if _, err := c.NextCard(ctx); !errors.Is(err, game.ErrIntakeClosed) {
		t.Fatalf("NextCard on drained closed intake = %v", err)
	}
}

func TestChannelTryPushFull(t *testing.T) {
	c := NewChannel(1)
	if err := c.TryPush("A♣"); err != nil {
		t.Fatalf("first TryPush error = %v", err)
	}
	if err := c.TryPush("2♣"); !errors.Is(err, ErrFull) {
		t.Fatalf("second TryPush error = %v, want ErrFull", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestChannelNextCardHonoursCancel(t *testing.T) {
	c := NewChannel(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.NextCard(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("NextCard() error = %v, want deadline exceeded", err)
	}
}

func TestChannelFeedsTable(t *testing.T) {
	c := NewChannel(8)
	tbl := game.NewTable(game.Rules{}, game.DrainRemaining, nil)
	done := make(chan []game.RoundReport, 1)
	go func() {
		var reports []game.RoundReport
		_ = tbl.Run(context.Background(), c, game.SinkFunc(func(_ context.Context, rep game.RoundReport) {
			reports = append(reports, rep)
		}))
		done <- reports
	}()
	for _, card := range game.NewDeck() {
		if err := c.Push(context.Background(), card.String()); err != nil {
			t.Fatalf("Push error = %v", err)
		}
	}
	c.Close()
	select {
	case reports := <-done:
		if len(reports) != 1 || reports[0].Status != game.RoundComplete {
			t.Fatalf("reports = %+v", reports)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("table did not finish")
	}
}

func TestLinesSkipsBlankAndComments(t *testing.T) {
	l := NewLines(strings.NewReader("# deal 1\nA♣\n\n  7♦  \n"))
	ctx := context.Background()
	for _, want := range []string{"A♣", "7♦"} {
		got, err := l.NextCard(ctx)
		if err != nil || got != want {
			t.Fatalf("NextCard() = %q, %v; want %q", got, err, want)
		}
	}
	if _, err := l.NextCard(ctx); !errors.Is(err, game.ErrIntakeClosed) {
		t.Fatalf("NextCard at EOF = %v", err)
	}
}
