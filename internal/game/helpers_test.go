package game

import "context"

// scriptIntake replays a fixed list of identifiers, then reports the feed closed.
type scriptIntake struct {
	cards []string
	next  int
}

func script(cards ...string) *scriptIntake {
	return &scriptIntake{cards: cards}
}

func (s *scriptIntake) NextCard(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.next >= len(s.cards) {
		return "", ErrIntakeClosed
	}
	c := s.cards[s.next]
	s.next++
	return c, nil
}

func (s *scriptIntake) Remaining() int {
	return len(s.cards) - s.next
}

// cleanDeal is the deck in order. A seat only ever discards on a suit that is
// already exhausted, so the round always completes.
func cleanDeal() []string {
	out := make([]string, 0, DeckSize)
	for _, c := range NewDeck() {
		out = append(out, c.String())
	}
	return out
}

type recordingObserver struct {
	started []Seat
	trumps  []Card
	plays   []PlayResult
	drained []int
}

func (o *recordingObserver) RoundStarted(_ int, leader Seat) { o.started = append(o.started, leader) }
func (o *recordingObserver) TrumpSet(_ int, card Card)       { o.trumps = append(o.trumps, card) }
func (o *recordingObserver) CardPlayed(_ int, res PlayResult) {
	o.plays = append(o.plays, res)
}
func (o *recordingObserver) CardsDrained(_ int, n int) { o.drained = append(o.drained, n) }

func mustCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}
