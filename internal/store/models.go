package store

import "time"

type RefereeTable struct {
	ID          string
	DrainPolicy string
	RevealTrump bool
	CreatedAt   time.Time
	ClosedAt    *time.Time
}

type Round struct {
	ID         string
	TableID    string
	Number     int
	LeaderSeat int
	Status     string
	Reason     string
	Detail     string
	TrumpCard  string
	Plays      int
	Drained    int
	StartedAt  time.Time
	EndedAt    *time.Time
}

type Play struct {
	ID        string
	RoundID   string
	Trick     int
	Position  int
	Seat      int
	Card      string
	Violation string
	CreatedAt time.Time
}

// RoundOutcome is what FinishRound records once a round is decided.
type RoundOutcome struct {
	Status    string
	Reason    string
	Detail    string
	TrumpCard string
	Plays     int
}
