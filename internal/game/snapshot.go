package game

import (
	"github.com/lox/holdemtable/internal/deck"
)

// SeatView is the public view of one occupied seat
type SeatView struct {
	Seat      int         `json:"seat"`
	PlayerID  string      `json:"playerId"`
	Name      string      `json:"name"`
	Stack     Chips       `json:"stack"`
	StreetBet Chips       `json:"streetBet"`
	TotalBet  Chips       `json:"totalBet"`
	Seated    bool        `json:"seated"`
	InHand    bool        `json:"inHand"`
	ToAct     bool        `json:"toAct"`
	Showing   bool        `json:"showing"`
	Hole      []deck.Card `json:"hole,omitempty"`
}

// Snapshot is a serialisable copy of the public table state. Hole cards are
// only included for players who are showing.
type Snapshot struct {
	HandNumber int         `json:"handNumber"`
	Phase      Phase       `json:"phase"`
	InProgress bool        `json:"inProgress"`
	Paused     bool        `json:"paused"`
	Board      []deck.Card `json:"board"`
	Pot        Chips       `json:"pot"`
	StreetPot  Chips       `json:"streetPot"`
	ToMatch    Chips       `json:"toMatch"`
	MinRaise   Chips       `json:"minRaise"`
	Blind      Chips       `json:"blind"`
	Button     int         `json:"button"`
	SmallBlind int         `json:"smallBlind"`
	BigBlind   int         `json:"bigBlind"`
	Turn       int         `json:"turn"`
	Seats      []*SeatView `json:"seats"`
	LastResult *HandResult `json:"lastResult,omitempty"`
}

// Snapshot captures the public table state
func (t *Table) Snapshot() Snapshot {
	s := Snapshot{
		HandNumber: t.handNum,
		Phase:      t.phase,
		InProgress: t.inProgress,
		Board:      t.Board(),
		Pot:        t.pot,
		StreetPot:  t.streetPot,
		ToMatch:    t.toMatch,
		MinRaise:   t.minRaise,
		Blind:      t.cfg.Blind,
		Button:     t.button,
		SmallBlind: t.smallBlind,
		BigBlind:   t.bigBlind,
		Turn:       t.turn,
		Seats:      make([]*SeatView, len(t.seats)),
	}
	if t.lastResult != nil {
		r := *t.lastResult
		r.Awards = append([]Award(nil), r.Awards...)
		s.LastResult = &r
	}

	for i, p := range t.seats {
		if p == nil {
			continue
		}
		v := &SeatView{
			Seat:      p.Seat,
			PlayerID:  p.ID,
			Name:      p.Name,
			Stack:     p.Stack,
			StreetBet: p.StreetBet,
			TotalBet:  p.TotalBet,
			Seated:    p.Seated,
			InHand:    p.InHand,
			ToAct:     p.ToAct,
			Showing:   p.Showing,
		}
		if p.Showing {
			v.Hole = append([]deck.Card(nil), p.Hole...)
		}
		s.Seats[i] = v
	}
	return s
}

// Seat returns the view of the given seat, or nil
func (s Snapshot) Seat(seat int) *SeatView {
	if seat < 0 || seat >= len(s.Seats) {
		return nil
	}
	return s.Seats[seat]
}
