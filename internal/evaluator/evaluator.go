package evaluator

// Best-five-of-seven hand evaluation using per-suit rank bitmasks.
// Bit i of a mask is rank i+2, so bit 0 is a deuce and bit 12 an ace.

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/lox/holdemtable/internal/deck"
)

// ErrInvalidHand is returned for hands with the wrong card count, invalid
// cards or duplicates
var ErrInvalidHand = errors.New("invalid hand")

const (
	aceBit   = 12
	wheelMsk = uint16(1<<aceBit | 0xF) // A,2,3,4,5
)

type masks struct {
	all    uint16
	suits  [deck.NumSuits]uint16
	counts [13]int
}

func buildMasks(cards []deck.Card) (masks, error) {
	var m masks
	for _, c := range cards {
		if !c.Valid() {
			return m, fmt.Errorf("card %v: %w", c, ErrInvalidHand)
		}
		bit := uint16(1) << (c.Rank - deck.Two)
		if m.suits[c.Suit]&bit != 0 {
			return m, fmt.Errorf("duplicate card %v: %w", c, ErrInvalidHand)
		}
		m.suits[c.Suit] |= bit
		m.all |= bit
		m.counts[c.Rank-deck.Two]++
	}
	return m, nil
}

// Evaluate returns the value of the best five-card hand that can be made
// from 5 to 7 cards
func Evaluate(cards []deck.Card) (HandValue, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HandValue{}, fmt.Errorf("%d cards: %w", len(cards), ErrInvalidHand)
	}
	m, err := buildMasks(cards)
	if err != nil {
		return HandValue{}, err
	}
	return evaluateMasks(m), nil
}

// MustEvaluate is like Evaluate but panics on invalid input. Intended for
// tests and fixtures.
func MustEvaluate(cards []deck.Card) HandValue {
	v, err := Evaluate(cards)
	if err != nil {
		panic(err)
	}
	return v
}

func evaluateMasks(m masks) HandValue {
	flushSuit := -1
	for s, suit := range m.suits {
		if bits.OnesCount16(suit) >= 5 {
			flushSuit = s
			break
		}
	}

	if flushSuit >= 0 {
		if high, ok := straightHigh(m.suits[flushSuit]); ok {
			return HandValue{Class: StraightFlush, Ranks: straightRanks(high)}
		}
	}

	// group ranks by multiplicity, highest rank first
	var quads, trips, pairs, singles []deck.Rank
	for i := 12; i >= 0; i-- {
		r := deck.Rank(i) + deck.Two
		switch m.counts[i] {
		case 4:
			quads = append(quads, r)
		case 3:
			trips = append(trips, r)
		case 2:
			pairs = append(pairs, r)
		case 1:
			singles = append(singles, r)
		}
	}

	if len(quads) > 0 {
		q := quads[0]
		return HandValue{Class: FourOfAKind, Ranks: [5]deck.Rank{q, q, q, q, highestExcept(m.all, q)}}
	}

	if len(trips) > 0 && (len(trips) > 1 || len(pairs) > 0) {
		t := trips[0]
		var p deck.Rank
		if len(trips) > 1 {
			p = trips[1]
		}
		if len(pairs) > 0 && pairs[0] > p {
			p = pairs[0]
		}
		return HandValue{Class: FullHouse, Ranks: [5]deck.Rank{t, t, t, p, p}}
	}

	if flushSuit >= 0 {
		var v HandValue
		v.Class = Flush
		copy(v.Ranks[:], topRanks(m.suits[flushSuit], 5))
		return v
	}

	if high, ok := straightHigh(m.all); ok {
		return HandValue{Class: Straight, Ranks: straightRanks(high)}
	}

	if len(trips) > 0 {
		t := trips[0]
		k := topRanks(m.all&^rankBit(t), 2)
		return HandValue{Class: ThreeOfAKind, Ranks: [5]deck.Rank{t, t, t, k[0], k[1]}}
	}

	if len(pairs) >= 2 {
		hi, lo := pairs[0], pairs[1]
		k := topRanks(m.all&^rankBit(hi)&^rankBit(lo), 1)
		return HandValue{Class: TwoPair, Ranks: [5]deck.Rank{hi, hi, lo, lo, k[0]}}
	}

	if len(pairs) == 1 {
		p := pairs[0]
		k := topRanks(m.all&^rankBit(p), 3)
		return HandValue{Class: Pair, Ranks: [5]deck.Rank{p, p, k[0], k[1], k[2]}}
	}

	var v HandValue
	v.Class = HighCard
	copy(v.Ranks[:], topRanks(m.all, 5))
	return v
}

func rankBit(r deck.Rank) uint16 {
	return uint16(1) << (r - deck.Two)
}

// topRanks returns the n highest ranks present in mask, highest first
func topRanks(mask uint16, n int) []deck.Rank {
	out := make([]deck.Rank, 0, n)
	for mask != 0 && len(out) < n {
		bit := 15 - bits.LeadingZeros16(mask)
		out = append(out, deck.Rank(bit)+deck.Two)
		mask &^= 1 << bit
	}
	return out
}

func highestExcept(mask uint16, r deck.Rank) deck.Rank {
	k := topRanks(mask&^rankBit(r), 1)
	if len(k) == 0 {
		return 0
	}
	return k[0]
}

// straightHigh finds the highest straight in a rank mask, counting the ace
// low for the wheel
func straightHigh(mask uint16) (deck.Rank, bool) {
	run := uint16(0x1F) << (aceBit - 4) // T,J,Q,K,A
	for bit := aceBit; bit >= 4; bit-- {
		if mask&run == run {
			return deck.Rank(bit) + deck.Two, true
		}
		run >>= 1
	}
	if mask&wheelMsk == wheelMsk {
		return deck.Five, true
	}
	return 0, false
}

func straightRanks(high deck.Rank) [5]deck.Rank {
	if high == deck.Five {
		return [5]deck.Rank{deck.Five, deck.Four, deck.Three, deck.Two, deck.Ace}
	}
	return [5]deck.Rank{high, high - 1, high - 2, high - 3, high - 4}
}
