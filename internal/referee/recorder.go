package referee

import (
	"context"

	"sueca-referee/internal/store"
)

// Recorder persists what the tables decide. *store.Store implements it.
type Recorder interface {
	CreateTable(ctx context.Context, t store.RefereeTable) error
	CloseTable(ctx context.Context, tableID string) error
	StartRound(ctx context.Context, tableID string, number, leaderSeat int) (string, error)
	RecordPlay(ctx context.Context, p store.Play) error
	FinishRound(ctx context.Context, roundID string, out store.RoundOutcome) error
	RecordDrain(ctx context.Context, roundID string, drained int) error
}

var _ Recorder = (*store.Store)(nil)
