package evaluator

import (
	"fmt"

	"github.com/lox/holdemtable/internal/deck"
)

// Class is the category of a five-card hand, weakest first
type Class uint8

const (
	HighCard Class = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns the readable name of the class
func (c Class) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandValue is the comparable value of a best five-card hand. Ranks holds
// the five tiebreak ranks in significance order, e.g. a full house of
// kings over fours is K K K 4 4 and the wheel is 5 4 3 2 A.
type HandValue struct {
	Class Class        `json:"class"`
	Ranks [5]deck.Rank `json:"ranks"`
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 for a tie
func Compare(a, b HandValue) int {
	if a.Class != b.Class {
		if a.Class > b.Class {
			return 1
		}
		return -1
	}
	for i := range a.Ranks {
		if a.Ranks[i] != b.Ranks[i] {
			if a.Ranks[i] > b.Ranks[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Compare returns 1 if h beats other, -1 if other wins and 0 for a tie
func (h HandValue) Compare(other HandValue) int {
	return Compare(h, other)
}

// String describes the hand, e.g. "Full House, Kings over Fours"
func (h HandValue) String() string {
	r := h.Ranks
	switch h.Class {
	case StraightFlush:
		if r[0] == deck.Ace {
			return "Royal Flush"
		}
		return fmt.Sprintf("Straight Flush, %s high", r[0].Name())
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", r[0].Plural())
	case FullHouse:
		return fmt.Sprintf("Full House, %s over %s", r[0].Plural(), r[3].Plural())
	case Flush:
		return fmt.Sprintf("Flush, %s high", r[0].Name())
	case Straight:
		return fmt.Sprintf("Straight, %s high", r[0].Name())
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", r[0].Plural())
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", r[0].Plural(), r[2].Plural())
	case Pair:
		return fmt.Sprintf("Pair of %s", r[0].Plural())
	default:
		return fmt.Sprintf("High Card, %s", r[0].Name())
	}
}
