package game

type Phase string

const (
	PhaseAwaitingTrump Phase = "awaiting_trump"
	PhasePlayingTricks Phase = "playing_tricks"
	PhaseComplete      Phase = "round_complete"
	PhaseInvalidated   Phase = "round_invalidated"
)

// Rules selects between the two ways a table announces trump.
type Rules struct {
	// RevealTrump reads the turned-up trump card as its own identifier before
	// the first trick. TrumpPlayed then tracks that exact card instead of the suit.
	RevealTrump bool
}

// RoundState is everything a round accumulates. It is owned by a Round and
// lent to the trick evaluators of that round.
type RoundState struct {
	Rules       Rules
	Tracker     SuitTracker
	Leader      Seat
	Phase       Phase
	TrumpCard   Card
	TrumpSuit   Suit
	HasTrump    bool
	TrumpPlayed bool
}

func (s *RoundState) Reset(leader Seat) {
	s.Tracker.Reset()
	s.Leader = leader
	s.Phase = PhaseAwaitingTrump
	s.TrumpCard = Card{}
	s.TrumpSuit = 0
	s.HasTrump = false
	s.TrumpPlayed = false
}

func (s *RoundState) setTrump(card Card) {
	s.TrumpCard = card
	s.TrumpSuit = card.Suit
	s.HasTrump = true
}

func (s *RoundState) notePlayed(card Card) {
	if !s.HasTrump || s.TrumpPlayed {
		return
	}
	if s.Rules.RevealTrump {
		s.TrumpPlayed = card == s.TrumpCard
		return
	}
	s.TrumpPlayed = card.Suit == s.TrumpSuit
}

type SeatState struct {
	Seat      int             `json:"seat"`
	PlayerID  string          `json:"player_id"`
	Available map[string]bool `json:"available"`
}

type RoundSnapshot struct {
	Phase       string      `json:"phase"`
	Leader      string      `json:"leader"`
	Trick       int         `json:"trick"`
	Position    int         `json:"position"`
	NextSeat    string      `json:"next_seat,omitempty"`
	LeadSuit    string      `json:"lead_suit,omitempty"`
	TrumpCard   string      `json:"trump_card,omitempty"`
	TrumpSuit   string      `json:"trump_suit,omitempty"`
	TrumpPlayed bool        `json:"trump_played"`
	Plays       int         `json:"plays"`
	Seats       []SeatState `json:"seats"`
}
