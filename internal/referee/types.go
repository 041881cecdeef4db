package referee

import (
	"time"

	"sueca-referee/internal/game"
	"sueca-referee/internal/referee/stream"
)

// Event names published on a table's stream.
const (
	EventRoundStarted     = "round_started"
	EventTrumpSet         = "trump_set"
	EventCardPlayed       = "card_played"
	EventSuitVoid         = "suit_void"
	EventRoundComplete    = "round_complete"
	EventRoundInvalidated = "round_invalidated"
	EventCardsDrained     = "cards_drained"
	EventTableClosed      = "table_closed"
)

type TableMeta struct {
	TableID     string
	RevealTrump bool
	DrainPolicy game.DrainPolicy
}

// TableLifecycleObserver is told when tables open and close, so outbound
// integrations can follow their event buffers.
type TableLifecycleObserver interface {
	OnTableStarted(meta TableMeta, buf *stream.EventBuffer)
	OnTableClosed(tableID string)
}

type TableInfo struct {
	TableID      string    `json:"table_id"`
	RevealTrump  bool      `json:"reveal_trump"`
	DrainPolicy  string    `json:"drain_policy"`
	Rounds       int       `json:"rounds"`
	NextLeader   string    `json:"next_leader"`
	Pending      int       `json:"pending_cards"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

type TableState struct {
	TableInfo
	Current *game.RoundSnapshot `json:"current,omitempty"`
	History []RoundSummary      `json:"history"`
}

// RoundSummary is the published form of a finished round.
type RoundSummary struct {
	Round     int       `json:"round"`
	Leader    string    `json:"leader"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Offender  string    `json:"offender,omitempty"`
	Card      string    `json:"card,omitempty"`
	Trick     int       `json:"trick,omitempty"`
	TrumpCard string    `json:"trump_card,omitempty"`
	Plays     int       `json:"plays"`
	Owed      int       `json:"owed,omitempty"`
	Drained   int       `json:"drained"`
	EndedAt   time.Time `json:"ended_at"`
}

type RoundStartedData struct {
	Leader string `json:"leader"`
}

type TrumpSetData struct {
	Card string `json:"card"`
	Suit string `json:"suit"`
}

type CardPlayedData struct {
	Trick       int    `json:"trick"`
	Position    int    `json:"position"`
	Seat        string `json:"seat"`
	Card        string `json:"card"`
	TrumpPlayed bool   `json:"trump_played"`
	Violation   string `json:"violation,omitempty"`
}

type SuitVoidData struct {
	Seat string `json:"seat"`
	Suit string `json:"suit"`
}

type CardsDrainedData struct {
	Count int `json:"count"`
}

type TableClosedData struct {
	Reason string `json:"reason"`
	Rounds int    `json:"rounds"`
}

func summarize(rep game.RoundReport, ended time.Time) RoundSummary {
	s := RoundSummary{
		Round:   rep.Number,
		Leader:  rep.Leader.PlayerID(),
		Status:  string(rep.Status),
		Reason:  string(rep.Reason),
		Detail:  rep.Detail,
		Plays:   rep.Plays,
		EndedAt: ended,
	}
	if rep.HasTrump {
		s.TrumpCard = rep.TrumpCard.String()
	}
	if rep.Status == game.RoundInvalidated {
		s.Owed = rep.Owed
	}
	if v := rep.Violation; v != nil {
		s.Offender = v.Seat.PlayerID()
		s.Card = v.Card.String()
		s.Trick = v.Trick
	}
	return s
}
