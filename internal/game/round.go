package game

import (
	"context"
	"errors"
	"sync"
)

type PlayResult struct {
	Trick       int
	Position    int
	Seat        Seat
	Card        Card
	Reveal      bool
	TrumpSet    bool
	TrumpPlayed bool
	Voided      bool
	VoidSuit    Suit
	Violation   *Violation
	RoundOver   bool
}

// Round sequences the ten tricks of one deal. Apply is the single entry point
// that mutates it; Snapshot may be called from other goroutines.
type Round struct {
	mu    sync.Mutex
	state RoundState
	trick *TrickEvaluator
	reads int
	plays int
	err   error
}

func NewRound(rules Rules, leader Seat) *Round {
	r := &Round{}
	r.state.Rules = rules
	r.state.Reset(leader)
	r.trick = NewTrickEvaluator(&r.state, 1)
	return r
}

func (r *Round) Leader() Seat {
	return r.state.Leader
}

func (r *Round) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Phase
}

func (r *Round) Done() bool {
	p := r.Phase()
	return p == PhaseComplete || p == PhaseInvalidated
}

// Err is the violation or input error that invalidated the round.
func (r *Round) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Owed is the number of identifiers the physical table still has to show
// before this deal is exhausted.
func (r *Round) Owed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	expected := DeckSize
	if r.state.Rules.RevealTrump {
		expected++
	}
	if n := expected - r.reads; n > 0 {
		return n
	}
	return 0
}

// NextSeat is the seat expected to play the next card.
func (r *Round) NextSeat() Seat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return SeatFor(r.state.Leader, r.trick.Position())
}

// Apply consumes one identifier from the feed.
func (r *Round) Apply(id string) (PlayResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := &r.state
	if st.Phase == PhaseComplete || st.Phase == PhaseInvalidated {
		return PlayResult{}, ErrRoundOver
	}
	r.reads++

	res := PlayResult{
		Trick:    r.trick.Number(),
		Position: r.trick.Position(),
		Seat:     SeatFor(st.Leader, r.trick.Position()),
	}
	card, err := ParseCard(id)
	if err != nil {
		st.Phase = PhaseInvalidated
		r.err = err
		res.RoundOver = true
		return res, err
	}
	res.Card = card

	if st.Phase == PhaseAwaitingTrump {
		st.setTrump(card)
		st.Phase = PhasePlayingTricks
		res.TrumpSet = true
		if st.Rules.RevealTrump {
			res.Reveal = true
			return res, nil
		}
	}

	lead, _, led := r.trick.LeadSuit()
	if err := r.trick.Evaluate(res.Seat, card); err != nil {
		st.Phase = PhaseInvalidated
		r.err = err
		errors.As(err, &res.Violation)
		res.RoundOver = true
		return res, err
	}
	r.plays++
	if led && card.Suit != lead {
		res.Voided = true
		res.VoidSuit = lead
	}
	res.TrumpPlayed = st.TrumpPlayed

	if r.trick.Complete() {
		if r.trick.Number() >= TricksPerRound {
			st.Phase = PhaseComplete
			res.RoundOver = true
		} else {
			r.trick = NewTrickEvaluator(st, r.trick.Number()+1)
		}
	}
	return res, nil
}

// Play pulls identifiers from the intake until the round completes or is
// invalidated. A violation or unreadable card is returned as the error.
func (r *Round) Play(ctx context.Context, in CardIntake, number int, obs Observer) error {
	for !r.Done() {
		id, err := in.NextCard(ctx)
		if err != nil {
			return err
		}
		res, err := r.Apply(id)
		if obs != nil {
			if res.TrumpSet {
				obs.TrumpSet(number, res.Card)
			}
			if !res.Reveal && (err == nil || res.Violation != nil) {
				obs.CardPlayed(number, res)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Round) Snapshot() RoundSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := &r.state
	snap := RoundSnapshot{
		Phase:       string(st.Phase),
		Leader:      st.Leader.PlayerID(),
		Trick:       r.trick.Number(),
		Position:    r.trick.Position(),
		TrumpPlayed: st.TrumpPlayed,
		Plays:       r.plays,
		Seats:       make([]SeatState, 0, NumSeats),
	}
	if st.Phase == PhaseAwaitingTrump || st.Phase == PhasePlayingTricks {
		snap.NextSeat = SeatFor(st.Leader, r.trick.Position()).PlayerID()
	}
	if lead, _, ok := r.trick.LeadSuit(); ok {
		snap.LeadSuit = lead.String()
	}
	if st.HasTrump {
		snap.TrumpCard = st.TrumpCard.String()
		snap.TrumpSuit = st.TrumpSuit.String()
	}
	for i := 0; i < NumSeats; i++ {
		seat := Seat(i)
		vec := st.Tracker.Vector(seat)
		avail := make(map[string]bool, NumSuits)
		for _, s := range Suits {
			avail[s.String()] = vec[s]
		}
		snap.Seats = append(snap.Seats, SeatState{Seat: seat.Slot(), PlayerID: seat.PlayerID(), Available: avail})
	}
	return snap
}

// report summarises the round; err is what Play returned.
func (r *Round) report(number int, err error) RoundReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep := RoundReport{
		Number:    number,
		Leader:    r.state.Leader,
		TrumpCard: r.state.TrumpCard,
		HasTrump:  r.state.HasTrump,
		Plays:     r.plays,
		Status:    RoundComplete,
	}
	if err == nil {
		return rep
	}
	rep.Status = RoundInvalidated
	rep.Detail = err.Error()
	rep.Reason, _ = ViolationReason(err)
	errors.As(err, &rep.Violation)
	return rep
}
