package deck

import (
	"errors"
	"fmt"
	"math/rand"
)

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

// ErrDeckExhausted is returned when more cards are drawn than remain
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck represents a deck of playing cards. The order is fixed by Shuffle and
// cards are drawn from the front.
type Deck struct {
	cards [DeckSize]Card
	next  int
	rng   *rand.Rand
}

// NewDeck creates an ordered 52-card deck that shuffles with rng
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	i := 0
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
	return d
}

// Shuffle randomizes the order of all 52 cards (Fisher-Yates) and makes
// every card drawable again
func (d *Deck) Shuffle() {
	for i := DeckSize - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	d.next = 0
}

// Draw removes and returns the next n cards
func (d *Deck) Draw(n int) ([]Card, error) {
	if n < 0 || n > d.Remaining() {
		return nil, fmt.Errorf("draw %d with %d remaining: %w", n, d.Remaining(), ErrDeckExhausted)
	}

	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining returns the number of cards left to draw
func (d *Deck) Remaining() int {
	return DeckSize - d.next
}

// Stack places the given cards at the front of the deck in order, followed
// by the rest in their current order. Used to set up deterministic deals.
func (d *Deck) Stack(top []Card) {
	var rest []Card
	used := make(map[Card]bool, len(top))
	for _, c := range top {
		used[c] = true
	}
	for _, c := range d.cards {
		if !used[c] {
			rest = append(rest, c)
		}
	}
	n := copy(d.cards[:], top)
	copy(d.cards[n:], rest)
	d.next = 0
}
