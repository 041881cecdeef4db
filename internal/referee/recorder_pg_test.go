package referee

import (
	"context"
	"testing"

	"sueca-referee/internal/game"
	"sueca-referee/internal/store"
	"sueca-referee/internal/testutil"
)

func TestCoordinatorPersistsVerdictsToPostgres(t *testing.T) {
	st := testutil.OpenTestStore(t)
	c := NewCoordinator(Options{IntakeBuffer: 128, Recorder: st})
	info, err := c.CreateTable(context.Background(), TableSpec{})
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}

	feed := append([]string{}, renegeRound...)
	feed = append(feed, filler(game.DeckSize-len(renegeRound))...)
	submitAll(t, c, info.TableID, feed)
	waitFor(t, "drained verdict", func() bool {
		s, err := c.GetState(info.TableID)
		return err == nil && len(s.History) == 1 && s.History[0].Drained > 0
	})
	if err := c.CloseTable(context.Background(), info.TableID); err != nil {
		t.Fatalf("CloseTable() error = %v", err)
	}

	ctx := context.Background()
	table, err := st.GetTable(ctx, info.TableID)
	if err != nil {
		t.Fatalf("GetTable() error = %v", err)
	}
	if table.ClosedAt == nil || table.DrainPolicy != string(game.DrainRemaining) {
		t.Fatalf("stored table = %+v", table)
	}
	rounds, err := st.ListRounds(ctx, info.TableID, 10, 0)
	if err != nil {
		t.Fatalf("ListRounds() error = %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("rounds = %d, want 1", len(rounds))
	}
	r := rounds[0]
	if r.Status != string(game.RoundInvalidated) || r.Reason != string(game.ReasonReneged) || r.Drained != game.DeckSize-len(renegeRound) {
		t.Fatalf("stored round = %+v", r)
	}
	plays, err := st.ListPlays(ctx, r.ID)
	if err != nil {
		t.Fatalf("ListPlays() error = %v", err)
	}
	if len(plays) != len(renegeRound) {
		t.Fatalf("plays = %d, want %d", len(plays), len(renegeRound))
	}
	if last := plays[len(plays)-1]; last.Card != "4♥" || last.Violation != string(game.ReasonReneged) || last.Seat != 1 {
		t.Fatalf("violating play = %+v", last)
	}
	if _, err := st.GetTable(ctx, store.NewID()); err != store.ErrNotFound {
		t.Fatalf("unknown table err = %v", err)
	}
}
