package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Seat is a zero-based table position; seat 0 is "player1".
type Seat int

const NumSeats = 4

func (s Seat) Valid() bool {
	return s >= 0 && s < NumSeats
}

// Slot returns the 1-based seat number.
func (s Seat) Slot() int {
	return int(s) + 1
}

func (s Seat) PlayerID() string {
	return "player" + strconv.Itoa(s.Slot())
}

func (s Seat) String() string {
	return s.PlayerID()
}

// SeatFor maps the trick position of a play to the seat that makes it.
func SeatFor(leader Seat, pos int) Seat {
	return Seat(((int(leader)+pos)%NumSeats + NumSeats) % NumSeats)
}

// ParseSeat accepts "player3", "3" (1-based) forms.
func ParseSeat(v string) (Seat, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), "player")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > NumSeats {
		return 0, fmt.Errorf("invalid seat %q", v)
	}
	return Seat(n - 1), nil
}

// DealerRotation cycles the round leader through the seats 1,2,3,4,1,...
// It lives as long as the game loop that owns it.
type DealerRotation struct {
	next Seat
}

func NewDealerRotation(first Seat) *DealerRotation {
	return &DealerRotation{next: SeatFor(first, 0)}
}

// Next returns the leader for the upcoming round and advances the rotation.
func (r *DealerRotation) Next() Seat {
	s := r.next
	r.next = SeatFor(s, 1)
	return s
}

// Peek returns the leader the next call to Next will produce.
func (r *DealerRotation) Peek() Seat {
	return r.next
}
