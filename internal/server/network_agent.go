package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdemtable/internal/game"
)

// Sender delivers a message to one connected player
type Sender interface {
	SendToPlayer(playerID string, msg *Message) error
}

// NetworkAgent is the game.Controller for a remote player. It forwards each
// action request to the player's connection and waits for the matching
// player_decision.
type NetworkAgent struct {
	playerID  string
	roomID    string
	sender    Sender
	clock     quartz.Clock
	logger    *log.Logger
	decisions chan game.Action

	mu      sync.Mutex
	pending bool
}

// NewNetworkAgent creates a new network agent for a remote player
func NewNetworkAgent(playerID, roomID string, sender Sender, clock quartz.Clock, logger *log.Logger) *NetworkAgent {
	return &NetworkAgent{
		playerID:  playerID,
		roomID:    roomID,
		sender:    sender,
		clock:     clock,
		logger:    logger.WithPrefix("network-agent").With("player", playerID),
		decisions: make(chan game.Action, 1),
	}
}

// RequestAction implements game.Controller
func (na *NetworkAgent) RequestAction(ctx context.Context, req game.ActionRequest) (game.Action, error) {
	na.setPending(true)
	defer na.setPending(false)

	// drop a decision that arrived after the previous request ended
	select {
	case <-na.decisions:
	default:
	}

	msg, err := NewMessage(MessageTypeActionRequired, ActionRequiredData{
		RoomID:         na.roomID,
		Request:        req,
		TimeoutSeconds: int(req.Deadline.Sub(na.clock.Now()).Seconds()),
	})
	if err != nil {
		return game.Action{}, err
	}
	if err := na.sender.SendToPlayer(na.playerID, msg); err != nil {
		return game.Action{}, fmt.Errorf("request action: %w", err)
	}
	na.logger.Debug("Requested decision", "hand", req.HandNumber, "phase", req.Phase, "toCall", req.ToCall)

	select {
	case a := <-na.decisions:
		return a, nil
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}
}

// HandleDecision passes a decision from the client to the waiting request.
// An unknown action folds, and a raise whose amount cannot be read is passed
// on without one so the table folds it.
func (na *NetworkAgent) HandleDecision(data PlayerDecisionData) error {
	action, ok := decodeDecision(data)
	if !ok {
		na.logger.Warn("Unreadable decision folds", "action", data.Action, "amount", string(data.Amount))
	}

	na.mu.Lock()
	defer na.mu.Unlock()
	if !na.pending {
		return ErrNoPendingDecision
	}
	select {
	case na.decisions <- action:
		na.logger.Debug("Received decision", "action", action)
		return nil
	default:
		return fmt.Errorf("decision already received: %w", ErrNoPendingDecision)
	}
}

// decodeDecision reports false when the action or its amount is unreadable
func decodeDecision(data PlayerDecisionData) (game.Action, bool) {
	kind, err := game.ParseActionKind(data.Action)
	if err != nil {
		return game.Action{Kind: game.Fold}, false
	}
	action := game.Action{Kind: kind}
	if len(data.Amount) == 0 || string(data.Amount) == "null" {
		return action, true
	}
	amount, ok := parseAmount(data.Amount)
	if ok {
		action.Amount = amount
		action.HasAmount = true
	}
	return action, ok
}

// parseAmount accepts a JSON integer or a numeric string
func parseAmount(raw json.RawMessage) (game.Chips, bool) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return game.Chips(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return game.Chips(n), true
}

func (na *NetworkAgent) setPending(p bool) {
	na.mu.Lock()
	defer na.mu.Unlock()
	na.pending = p
}
