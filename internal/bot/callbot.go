package bot

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemtable/internal/game"
)

// CallBot checks when it can and calls everything else
type CallBot struct {
	logger *log.Logger
}

// NewCallBot creates a new CallBot instance
func NewCallBot(logger *log.Logger) *CallBot {
	return &CallBot{logger: logger}
}

func (c *CallBot) RequestAction(_ context.Context, req game.ActionRequest) (game.Action, error) {
	if req.ToCall == 0 {
		return game.Action{Kind: game.Check}, nil
	}
	c.logger.Debug("Calling", "seat", req.Seat, "toCall", req.ToCall)
	return game.Action{Kind: game.Call}, nil
}
