package game

const (
	PlaysPerTrick  = NumSeats
	TricksPerRound = DeckSize / NumSeats
)

// TrickEvaluator judges the four plays of one trick against the round state it
// was given. Besides the leading suit it keeps no state of its own.
type TrickEvaluator struct {
	round    *RoundState
	number   int
	pos      int
	leadSuit Suit
	leadSeat Seat
	aborted  bool
}

func NewTrickEvaluator(round *RoundState, number int) *TrickEvaluator {
	return &TrickEvaluator{round: round, number: number}
}

func (t *TrickEvaluator) Number() int { return t.number }

// Position is the index of the next play (0..3).
func (t *TrickEvaluator) Position() int { return t.pos }

func (t *TrickEvaluator) Complete() bool { return t.pos >= PlaysPerTrick }

// LeadSuit is meaningful once the first play was accepted.
func (t *TrickEvaluator) LeadSuit() (Suit, Seat, bool) {
	return t.leadSuit, t.leadSeat, t.pos > 0
}

// Evaluate judges the next play of the trick. A nil error accepts the play;
// a *Violation rejects it and aborts the trick.
func (t *TrickEvaluator) Evaluate(seat Seat, card Card) error {
	if t.aborted {
		return ErrTrickAborted
	}
	if t.Complete() {
		return ErrTrickComplete
	}
	st := t.round
	pos := t.pos

	if !st.Tracker.IsAvailable(seat, card.Suit) {
		return t.reject(ReasonReneged, seat, card)
	}

	switch {
	case pos == 0:
		t.leadSuit = card.Suit
		t.leadSeat = seat
	case pos < PlaysPerTrick-1:
		if card.Suit != t.leadSuit {
			st.Tracker.MarkUnavailable(seat, t.leadSuit)
		}
	default:
		if card.Suit != t.leadSuit {
			if st.HasTrump && t.leadSuit == st.TrumpSuit && !st.TrumpPlayed {
				return t.reject(ReasonMustTrump, seat, card)
			}
			st.Tracker.MarkUnavailable(seat, t.leadSuit)
		}
	}

	st.notePlayed(card)
	t.pos++
	return nil
}

func (t *TrickEvaluator) reject(reason Reason, seat Seat, card Card) error {
	t.aborted = true
	return &Violation{Reason: reason, Seat: seat, Card: card, Trick: t.number, Position: t.pos}
}
