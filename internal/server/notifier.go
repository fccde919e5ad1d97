package server

import (
	"github.com/charmbracelet/log"
	"github.com/lox/holdemtable/internal/deck"
	"github.com/lox/holdemtable/internal/game"
)

// roomNotifier turns engine output into websocket messages for a room
type roomNotifier struct {
	roomID string
	out    Broadcaster
	logger *log.Logger
}

func (n *roomNotifier) TableState(s game.Snapshot) {
	msg, err := NewMessage(MessageTypeTableState, TableStateData{RoomID: n.roomID, Snapshot: s})
	if err != nil {
		n.logger.Error("Failed to create table state message", "error", err)
		return
	}
	n.out.BroadcastToRoom(n.roomID, msg)
}

func (n *roomNotifier) HoleCards(playerID string, seat int, cards []deck.Card) {
	msg, err := NewMessage(MessageTypeHoleCards, HoleCardsData{RoomID: n.roomID, Seat: seat, Cards: cards})
	if err != nil {
		n.logger.Error("Failed to create hole cards message", "error", err)
		return
	}
	// bots have no connection
	if err := n.out.SendToPlayer(playerID, msg); err != nil {
		n.logger.Debug("Hole cards not delivered", "player", playerID, "error", err)
	}
}

// resultLogger logs each settled hand once
type resultLogger struct {
	logger   *log.Logger
	lastHand int
}

func (r *resultLogger) TableState(s game.Snapshot) {
	res := s.LastResult
	if res == nil || res.HandNumber <= r.lastHand {
		return
	}
	r.lastHand = res.HandNumber
	for _, a := range res.Awards {
		r.logger.Info("Pot awarded", "hand", res.HandNumber, "player", a.Name, "seat", a.Seat, "amount", a.Amount, "hand_rank", a.Hand)
	}
}

func (r *resultLogger) HoleCards(string, int, []deck.Card) {}
