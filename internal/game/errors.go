package game

import (
	"errors"
	"fmt"
)

var (
	ErrIntakeClosed  = errors.New("intake_closed")
	ErrRoundOver     = errors.New("round_over")
	ErrTrickComplete = errors.New("trick_complete")
	ErrTrickAborted  = errors.New("trick_aborted")
)

type Reason string

const (
	ReasonReneged     Reason = "reneged"
	ReasonMustTrump   Reason = "must_trump"
	ReasonInvalidCard Reason = "invalid_card"
)

// Violation is the verdict for a play that breaks the rules.
type Violation struct {
	Reason   Reason
	Seat     Seat
	Card     Card
	Trick    int
	Position int
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s played %s (trick %d, position %d)", v.Reason, v.Seat, v.Card, v.Trick, v.Position)
}

// ViolationReason extracts the reason from a round error, if it carries one.
func ViolationReason(err error) (Reason, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v.Reason, true
	}
	if errors.Is(err, ErrInvalidCard) {
		return ReasonInvalidCard, true
	}
	return "", false
}
