package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidCard = errors.New("invalid_card")

type Suit int

type Rank int

// Suit order matches the deck numbering used by the recognition model.
const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const NumSuits = 4

const (
	Ace   Rank = 1
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

const DeckSize = 40

var Suits = [NumSuits]Suit{Clubs, Diamonds, Hearts, Spades}

// deckRanks is the per-suit order of the 40-card deck.
var deckRanks = [...]Rank{Ace, Two, Three, Four, Five, Six, Seven, Jack, Queen, King}

var suitSymbols = [NumSuits]string{"♣", "♦", "♥", "♠"}

var suitNames = [NumSuits]string{"clubs", "diamonds", "hearts", "spades"}

var rankLabels = map[Rank]string{
	Ace: "A", Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Jack: "J", Queen: "Q", King: "K",
}

type Card struct {
	Rank Rank
	Suit Suit
}

func (s Suit) String() string {
	if !s.Valid() {
		return "?"
	}
	return suitSymbols[s]
}

func (s Suit) Name() string {
	if !s.Valid() {
		return "unknown"
	}
	return suitNames[s]
}

func (s Suit) Valid() bool {
	return s >= Clubs && s <= Spades
}

func (r Rank) String() string {
	if l, ok := rankLabels[r]; ok {
		return l
	}
	return "?"
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Number returns the 1-based deck number of the card (1..40).
func (c Card) Number() int {
	for i, r := range deckRanks {
		if r == c.Rank {
			return int(c.Suit)*len(deckRanks) + i + 1
		}
	}
	return 0
}

func NewDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range deckRanks {
			cards = append(cards, Card{Rank: r, Suit: s})
		}
	}
	return cards
}

// ParseCard accepts "A♣", "7h", "Qs" style identifiers and deck numbers "1".."40".
func ParseCard(id string) (Card, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(id, "\uFE0F", ""))
	if raw == "" {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, id)
	}
	if allDigits(raw) {
		n, err := strconv.Atoi(raw)
		if err != nil || raw[0] == '0' || n < 1 || n > DeckSize {
			return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, id)
		}
		return Card{
			Rank: deckRanks[(n-1)%len(deckRanks)],
			Suit: Suits[(n-1)/len(deckRanks)],
		}, nil
	}

	runes := []rune(raw)
	suit, ok := parseSuit(string(runes[len(runes)-1]))
	if !ok || len(runes) < 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, id)
	}
	rank, ok := parseRank(string(runes[:len(runes)-1]))
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, id)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// CardFromDetection maps a recognition result such as ("Q", "Hearts") to a card.
func CardFromDetection(rank, suit string) (Card, error) {
	s, ok := parseSuit(suit)
	if !ok {
		return Card{}, fmt.Errorf("%w: suit %q", ErrInvalidCard, suit)
	}
	r, ok := parseRank(rank)
	if !ok {
		return Card{}, fmt.Errorf("%w: rank %q", ErrInvalidCard, rank)
	}
	return Card{Rank: r, Suit: s}, nil
}

// SuitOf resolves only the suit of a card identifier.
func SuitOf(id string) (Suit, error) {
	c, err := ParseCard(id)
	if err != nil {
		return 0, err
	}
	return c.Suit, nil
}

// allDigits reports whether v is a plain run of ASCII digits, with no sign.
func allDigits(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return v != ""
}

func parseSuit(v string) (Suit, bool) {
	v = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(v, "\uFE0F", "")))
	switch v {
	case "♣", "♧", "c", "club", "clubs", "paus":
		return Clubs, true
	case "♦", "♢", "d", "diamond", "diamonds", "ouros":
		return Diamonds, true
	case "♥", "♡", "h", "heart", "hearts", "copas":
		return Hearts, true
	case "♠", "♤", "s", "spade", "spades", "espadas":
		return Spades, true
	}
	return 0, false
}

func parseRank(v string) (Rank, bool) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "A", "ACE":
		return Ace, true
	case "2":
		return Two, true
	case "3":
		return Three, true
	case "4":
		return Four, true
	case "5":
		return Five, true
	case "6":
		return Six, true
	case "7":
		return Seven, true
	case "J", "JACK":
		return Jack, true
	case "Q", "QUEEN":
		return Queen, true
	case "K", "KING":
		return King, true
	}
	return 0, false
}
