package game

import "context"

// CardIntake hands the engine the next recognised card identifier. NextCard
// blocks until one is available; it returns ErrIntakeClosed once the feed ends.
type CardIntake interface {
	NextCard(ctx context.Context) (string, error)
}

type IntakeFunc func(ctx context.Context) (string, error)

func (f IntakeFunc) NextCard(ctx context.Context) (string, error) { return f(ctx) }

// Observer follows a table play by play. Callbacks run on the game loop
// goroutine and must not block.
type Observer interface {
	RoundStarted(round int, leader Seat)
	TrumpSet(round int, card Card)
	CardPlayed(round int, res PlayResult)
	CardsDrained(round int, n int)
}

// VerdictSink receives the outcome of every round.
type VerdictSink interface {
	RoundFinished(ctx context.Context, report RoundReport)
}

type SinkFunc func(ctx context.Context, report RoundReport)

func (f SinkFunc) RoundFinished(ctx context.Context, report RoundReport) { f(ctx, report) }
