package game

// SuitTracker accumulates negative evidence about the hands at the table:
// an entry turns unavailable once a seat fails to follow that suit and stays
// that way until Reset. The zero value has every suit available.
type SuitTracker struct {
	void [NumSeats][NumSuits]bool
}

func (t *SuitTracker) MarkUnavailable(seat Seat, suit Suit) {
	t.void[seat][suit] = true
}

func (t *SuitTracker) IsAvailable(seat Seat, suit Suit) bool {
	return !t.void[seat][suit]
}

func (t *SuitTracker) Reset() {
	t.void = [NumSeats][NumSuits]bool{}
}

// Vector returns the availability of each suit for a seat, in suit order.
func (t *SuitTracker) Vector(seat Seat) [NumSuits]bool {
	var out [NumSuits]bool
	for i := range out {
		out[i] = !t.void[seat][i]
	}
	return out
}
