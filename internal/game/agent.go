package game

import (
	"context"
	"time"

	"github.com/lox/holdemtable/internal/deck"
)

// ActionRequest is what a controller sees when its seat must act
type ActionRequest struct {
	HandNumber int         `json:"handNumber"`
	Seat       int         `json:"seat"`
	PlayerID   string      `json:"playerId"`
	Phase      Phase       `json:"phase"`
	Stack      Chips       `json:"stack"`
	ToCall     Chips       `json:"toCall"`
	MinRaise   Chips       `json:"minRaise"` // fewest chips a raise commits
	MaxRaise   Chips       `json:"maxRaise"` // all-in
	Pot        Chips       `json:"pot"`
	Hole       []deck.Card `json:"hole"`
	Board      []deck.Card `json:"board"`
	Deadline   time.Time   `json:"deadline"`
}

// Controller decides actions for a seat. RequestAction should return when
// ctx is cancelled; the engine stops waiting at the deadline regardless.
type Controller interface {
	RequestAction(ctx context.Context, req ActionRequest) (Action, error)
}

// ControllerFunc adapts a function to the Controller interface
type ControllerFunc func(ctx context.Context, req ActionRequest) (Action, error)

func (f ControllerFunc) RequestAction(ctx context.Context, req ActionRequest) (Action, error) {
	return f(ctx, req)
}

// Notifier receives table output. TableState is broadcast to everyone at
// the table; HoleCards is private to one player.
type Notifier interface {
	TableState(s Snapshot)
	HoleCards(playerID string, seat int, cards []deck.Card)
}

// Identity describes a player joining a table
type Identity struct {
	ID         string
	Name       string
	Controller Controller
}

// NewActionRequest builds the request for the player whose turn it is
func (t *Table) NewActionRequest(deadline time.Time) (ActionRequest, bool) {
	p := t.Player(t.turn)
	if p == nil {
		return ActionRequest{}, false
	}
	toCall := max(t.toMatch-p.StreetBet, 0)
	return ActionRequest{
		HandNumber: t.handNum,
		Seat:       p.Seat,
		PlayerID:   p.ID,
		Phase:      t.phase,
		Stack:      p.Stack,
		ToCall:     min(toCall, p.Stack),
		MinRaise:   min(toCall+t.minRaise, p.Stack),
		MaxRaise:   p.Stack,
		Pot:        t.pot + t.streetPot,
		Hole:       append([]deck.Card(nil), p.Hole...),
		Board:      t.Board(),
		Deadline:   deadline,
	}, true
}
