package game

import "github.com/lox/holdemtable/internal/deck"

// Notifiers fans table output out to several notifiers in order
type Notifiers []Notifier

func (ns Notifiers) TableState(s Snapshot) {
	for _, n := range ns {
		n.TableState(s)
	}
}

func (ns Notifiers) HoleCards(playerID string, seat int, cards []deck.Card) {
	for _, n := range ns {
		n.HoleCards(playerID, seat, cards)
	}
}

// NopNotifier discards all table output
type NopNotifier struct{}

func (NopNotifier) TableState(Snapshot) {}
func (NopNotifier) HoleCards(string, int, []deck.Card) {}
