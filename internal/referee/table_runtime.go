package referee

import (
	"context"
	"errors"
	"sync"
	"time"

	"sueca-referee/internal/game"
	"sueca-referee/internal/intake"
	"sueca-referee/internal/referee/stream"
	"sueca-referee/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const recorderTimeout = 3 * time.Second

// roundAbandoned is the recorded status of a round the feed left unfinished.
const roundAbandoned = "abandoned"

// tableRuntime is one table: its game loop, its intake and the sinks the
// loop reports to. Observer and sink callbacks run on the game loop goroutine.
type tableRuntime struct {
	meta        TableMeta
	table       *game.Table
	in          *intake.Channel
	buf         *stream.EventBuffer
	rec         Recorder
	historySize int
	createdAt   time.Time
	logger      zerolog.Logger
	cancel      context.CancelFunc
	done        chan struct{}

	mu           sync.Mutex
	lastActivity time.Time
	history      []RoundSummary
	roundIDs     map[int]string
	closeReason  string
}

func newTableRuntime(meta TableMeta, opts Options) *tableRuntime {
	createdAt, err := store.IDTime(meta.TableID)
	if err != nil {
		createdAt = time.Now()
	}
	rt := &tableRuntime{
		meta:         meta,
		in:           intake.NewChannel(opts.IntakeBuffer),
		buf:          stream.NewEventBuffer(meta.TableID, opts.EventBufferSize),
		rec:          opts.Recorder,
		historySize:  opts.HistorySize,
		createdAt:    createdAt,
		logger:       log.With().Str("table_id", meta.TableID).Logger(),
		cancel:       func() {},
		done:         make(chan struct{}),
		lastActivity: time.Now(),
		roundIDs:     map[int]string{},
	}
	rt.table = game.NewTable(game.Rules{RevealTrump: meta.RevealTrump}, meta.DrainPolicy, rt)
	return rt
}

func (rt *tableRuntime) run(ctx context.Context) {
	defer close(rt.done)
	err := rt.table.Run(ctx, rt.in, rt)
	reason := rt.currentCloseReason()
	switch {
	case err == nil:
		if reason == "" {
			reason = closeReasonFeed
		}
	case errors.Is(err, context.Canceled):
		if reason == "" {
			reason = closeReasonStop
		}
	default:
		reason = closeReasonError
		rt.logger.Error().Err(err).Msg("table loop failed")
	}
	rt.in.Close()
	rt.abandonOpenRounds()

	rounds := rt.table.Rounds()
	rt.buf.Append(EventTableClosed, rounds, TableClosedData{Reason: reason, Rounds: rounds})
	rt.buf.Close()
	if rt.rec != nil {
		rctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
		rt.recordErr(rt.rec.CloseTable(rctx, rt.meta.TableID), "close table")
		cancel()
	}
	rt.logger.Info().Str("reason", reason).Int("rounds", rounds).Msg("table closed")
}

// abandonOpenRounds closes the recorded rows of rounds that never reached a
// verdict.
func (rt *tableRuntime) abandonOpenRounds() {
	rt.mu.Lock()
	open := rt.roundIDs
	rt.roundIDs = map[int]string{}
	rt.mu.Unlock()
	if rt.rec == nil || len(open) == 0 {
		return
	}
	out := store.RoundOutcome{Status: roundAbandoned}
	if snap, ok := rt.table.Snapshot(); ok {
		out.Plays = snap.Plays
		out.TrumpCard = snap.TrumpCard
	}
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()
	for round, id := range open {
		rt.logger.Info().Int("round", round).Int("plays", out.Plays).Msg("round abandoned")
		rt.recordErr(rt.rec.FinishRound(ctx, id, out), "abandon round")
	}
}

func (rt *tableRuntime) submit(ctx context.Context, card string) error {
	if err := rt.in.Push(ctx, card); err != nil {
		if errors.Is(err, game.ErrIntakeClosed) {
			return ErrTableClosed
		}
		return err
	}
	rt.touch()
	return nil
}

func (rt *tableRuntime) close(reason string) {
	rt.setCloseReason(reason)
	rt.in.Close()
}

func (rt *tableRuntime) setCloseReason(reason string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closeReason == "" {
		rt.closeReason = reason
	}
}

func (rt *tableRuntime) currentCloseReason() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.closeReason
}

func (rt *tableRuntime) touch() {
	rt.mu.Lock()
	rt.lastActivity = time.Now()
	rt.mu.Unlock()
}

func (rt *tableRuntime) idleSince() time.Time {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.lastActivity
}

func (rt *tableRuntime) info() TableInfo {
	rt.mu.Lock()
	last := rt.lastActivity
	rt.mu.Unlock()
	return TableInfo{
		TableID:      rt.meta.TableID,
		RevealTrump:  rt.meta.RevealTrump,
		DrainPolicy:  string(rt.meta.DrainPolicy),
		Rounds:       rt.table.Rounds(),
		NextLeader:   rt.table.NextLeader().PlayerID(),
		Pending:      rt.in.Len(),
		CreatedAt:    rt.createdAt,
		LastActivity: last,
	}
}

func (rt *tableRuntime) state() TableState {
	st := TableState{TableInfo: rt.info()}
	if snap, ok := rt.table.Snapshot(); ok {
		st.Current = &snap
	}
	rt.mu.Lock()
	st.History = append([]RoundSummary(nil), rt.history...)
	rt.mu.Unlock()
	if st.History == nil {
		st.History = []RoundSummary{}
	}
	return st
}

func (rt *tableRuntime) roundID(round int) string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.roundIDs[round]
}

func (rt *tableRuntime) recordErr(err error, op string) {
	if err == nil {
		return
	}
	metricRecorderErrors.Add(1)
	rt.logger.Warn().Err(err).Str("op", op).Msg("recorder failed")
}

func (rt *tableRuntime) RoundStarted(round int, leader game.Seat) {
	rt.buf.Append(EventRoundStarted, round, RoundStartedData{Leader: leader.PlayerID()})
	if rt.rec == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()
	id, err := rt.rec.StartRound(ctx, rt.meta.TableID, round, int(leader))
	if err != nil {
		rt.recordErr(err, "start round")
		return
	}
	rt.mu.Lock()
	rt.roundIDs[round] = id
	rt.mu.Unlock()
}

func (rt *tableRuntime) TrumpSet(round int, card game.Card) {
	rt.buf.Append(EventTrumpSet, round, TrumpSetData{Card: card.String(), Suit: card.Suit.String()})
}

func (rt *tableRuntime) CardPlayed(round int, res game.PlayResult) {
	data := CardPlayedData{
		Trick:       res.Trick,
		Position:    res.Position,
		Seat:        res.Seat.PlayerID(),
		Card:        res.Card.String(),
		TrumpPlayed: res.TrumpPlayed,
	}
	if res.Violation != nil {
		data.Violation = string(res.Violation.Reason)
	}
	rt.buf.Append(EventCardPlayed, round, data)
	if res.Voided {
		rt.buf.Append(EventSuitVoid, round, SuitVoidData{Seat: res.Seat.PlayerID(), Suit: res.VoidSuit.String()})
	}
	if rt.rec == nil {
		return
	}
	roundID := rt.roundID(round)
	if roundID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()
	rt.recordErr(rt.rec.RecordPlay(ctx, store.Play{
		RoundID:   roundID,
		Trick:     res.Trick,
		Position:  res.Position,
		Seat:      int(res.Seat),
		Card:      res.Card.String(),
		Violation: data.Violation,
	}), "record play")
}

func (rt *tableRuntime) CardsDrained(round int, n int) {
	metricCardsDrained.Add(int64(n))
	rt.mu.Lock()
	for i := len(rt.history) - 1; i >= 0; i-- {
		if rt.history[i].Round == round {
			rt.history[i].Drained = n
			break
		}
	}
	roundID := rt.roundIDs[round]
	delete(rt.roundIDs, round)
	rt.mu.Unlock()
	rt.buf.Append(EventCardsDrained, round, CardsDrainedData{Count: n})

	if rt.rec == nil || roundID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()
	rt.recordErr(rt.rec.RecordDrain(ctx, roundID, n), "record drain")
}

// RoundFinished is the verdict sink of the table.
func (rt *tableRuntime) RoundFinished(ctx context.Context, rep game.RoundReport) {
	sum := summarize(rep, time.Now())
	rt.mu.Lock()
	rt.history = append(rt.history, sum)
	if over := len(rt.history) - rt.historySize; over > 0 {
		rt.history = append(rt.history[:0:0], rt.history[over:]...)
	}
	roundID := rt.roundIDs[rep.Number]
	if rep.Status == game.RoundComplete || rt.meta.DrainPolicy != game.DrainRemaining {
		delete(rt.roundIDs, rep.Number)
	}
	rt.mu.Unlock()

	metricRoundsTotal.Add(1)
	if rep.Status == game.RoundInvalidated {
		metricRoundsInvalidated.Add(1)
		rt.buf.Append(EventRoundInvalidated, rep.Number, sum)
		rt.logger.Warn().
			Int("round", rep.Number).
			Str("reason", sum.Reason).
			Str("offender", sum.Offender).
			Str("card", sum.Card).
			Int("trick", sum.Trick).
			Int("owed", rep.Owed).
			Msg("RENUNCIA")
	} else {
		rt.buf.Append(EventRoundComplete, rep.Number, sum)
		rt.logger.Info().
			Int("round", rep.Number).
			Str("leader", sum.Leader).
			Str("trump", sum.TrumpCard).
			Msg("round complete")
	}

	if rt.rec == nil || roundID == "" {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recorderTimeout)
	defer cancel()
	rt.recordErr(rt.rec.FinishRound(rctx, roundID, store.RoundOutcome{
		Status:    sum.Status,
		Reason:    sum.Reason,
		Detail:    sum.Detail,
		TrumpCard: sum.TrumpCard,
		Plays:     sum.Plays,
	}), "finish round")
}
