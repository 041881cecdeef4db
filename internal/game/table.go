package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

type DrainPolicy string

const (
	// DrainRemaining discards the identifiers still owed to an invalidated
	// round so the next round starts on a fresh deal.
	DrainRemaining DrainPolicy = "remaining"
	// DrainNone starts the next round on the very next identifier.
	DrainNone DrainPolicy = "none"
)

func ParseDrainPolicy(v string) (DrainPolicy, error) {
	switch DrainPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case "", DrainRemaining:
		return DrainRemaining, nil
	case DrainNone:
		return DrainNone, nil
	}
	return "", fmt.Errorf("unknown drain policy %q", v)
}

type RoundStatus string

const (
	RoundComplete    RoundStatus = "round_complete"
	RoundInvalidated RoundStatus = "round_invalidated"
)

type RoundReport struct {
	Number    int
	Leader    Seat
	Status    RoundStatus
	Reason    Reason
	Detail    string
	Violation *Violation
	TrumpCard Card
	HasTrump  bool
	Plays     int
	// Owed is how many identifiers of this deal had not been read yet.
	Owed int
}

// Table runs rounds back to back and rotates the leader between them.
type Table struct {
	Rules    Rules
	Drain    DrainPolicy
	Observer Observer

	mu       sync.Mutex
	rotation *DealerRotation
	rounds   int
	current  *Round
}

func NewTable(rules Rules, drain DrainPolicy, obs Observer) *Table {
	if drain == "" {
		drain = DrainRemaining
	}
	return &Table{
		Rules:    rules,
		Drain:    drain,
		Observer: obs,
		rotation: NewDealerRotation(0),
	}
}

// Run plays rounds until the intake closes or ctx is cancelled. Invalidated
// rounds are reported to the sink as soon as they are decided, then the rest
// of their deal is drained per the drain policy; they never stop the loop.
func (t *Table) Run(ctx context.Context, in CardIntake, sink VerdictSink) error {
	for {
		rep, err := t.PlayRound(ctx, in)
		if err != nil {
			if errors.Is(err, ErrIntakeClosed) {
				return nil
			}
			return err
		}
		if sink != nil {
			sink.RoundFinished(ctx, rep)
		}
		if rep.Status == RoundInvalidated {
			t.DrainRound(ctx, in, rep)
		}
	}
}

// PlayRound plays a single round with the next leader of the rotation. The
// error is non-nil only when the intake failed before the round finished.
// The round, and the leader rotation, only start once its first identifier
// arrives, so a feed that ends between rounds leaves no empty round behind.
func (t *Table) PlayRound(ctx context.Context, in CardIntake) (RoundReport, error) {
	first, err := in.NextCard(ctx)
	if err != nil {
		return RoundReport{}, err
	}
	src, pending := in, true
	in = IntakeFunc(func(ctx context.Context) (string, error) {
		if pending {
			pending = false
			return first, nil
		}
		return src.NextCard(ctx)
	})

	t.mu.Lock()
	if t.rotation == nil {
		t.rotation = NewDealerRotation(0)
	}
	leader := t.rotation.Next()
	t.rounds++
	number := t.rounds
	round := NewRound(t.Rules, leader)
	t.current = round
	t.mu.Unlock()

	if t.Observer != nil {
		t.Observer.RoundStarted(number, leader)
	}
	err = round.Play(ctx, in, number, t.Observer)
	if err != nil && round.Err() == nil {
		return round.report(number, nil), err
	}
	rep := round.report(number, err)
	rep.Owed = round.Owed()
	return rep, nil
}

// DrainRound discards what an invalidated round still owed, when the drain
// policy asks for it, and returns how many identifiers were dropped.
func (t *Table) DrainRound(ctx context.Context, in CardIntake, rep RoundReport) int {
	if rep.Status != RoundInvalidated || t.Drain != DrainRemaining {
		return 0
	}
	n := 0
	for ; n < rep.Owed; n++ {
		if _, err := in.NextCard(ctx); err != nil {
			break
		}
	}
	if t.Observer != nil {
		t.Observer.CardsDrained(rep.Number, n)
	}
	return n
}

// Rounds is the number of rounds started so far.
func (t *Table) Rounds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rounds
}

// NextLeader is the seat that will lead the next round.
func (t *Table) NextLeader() Seat {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rotation == nil {
		return 0
	}
	return t.rotation.Peek()
}

// Snapshot describes the round in progress, or the last one played.
func (t *Table) Snapshot() (RoundSnapshot, bool) {
	t.mu.Lock()
	round := t.current
	t.mu.Unlock()
	if round == nil {
		return RoundSnapshot{}, false
	}
	return round.Snapshot(), true
}
