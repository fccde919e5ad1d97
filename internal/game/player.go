package game

import (
	"github.com/lox/holdemtable/internal/deck"
)

// Chips is an amount in integer minor units
type Chips int64

// NoSeat marks an unset seat reference
const NoSeat = -1

// Player represents a player occupying a seat
type Player struct {
	ID        string
	Name      string
	Seat      int
	Stack     Chips
	StreetBet Chips // contribution on the current street
	TotalBet  Chips // contribution over the whole hand
	Seated    bool  // false once the player has left; removed after the hand
	InHand    bool
	ToAct     bool
	Showing   bool
	Hole      []deck.Card
}

// NewPlayer creates a seated player with the given stack
func NewPlayer(id, name string, seat int, stack Chips) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Seat:   seat,
		Stack:  stack,
		Seated: true,
	}
}

// Bet moves chips from the stack into the current street and hand
// contributions. Callers guarantee 0 <= amount <= Stack.
func (p *Player) Bet(amount Chips) {
	p.Stack -= amount
	p.StreetBet += amount
	p.TotalBet += amount
}

// TopUp adds winnings or refunds to the stack
func (p *Player) TopUp(amount Chips) {
	p.Stack += amount
}

// AllIn reports whether the player is in the hand with no chips behind
func (p *Player) AllIn() bool {
	return p.InHand && p.Stack == 0
}

// CanAct reports whether the player can be asked for a decision
func (p *Player) CanAct() bool {
	return p.InHand && p.Stack > 0
}

func (p *Player) resetHand() {
	p.StreetBet = 0
	p.TotalBet = 0
	p.InHand = false
	p.ToAct = false
	p.Showing = false
	p.Hole = nil
}
