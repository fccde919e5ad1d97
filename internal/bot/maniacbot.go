package bot

import (
	"context"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemtable/internal/game"
)

// ManiacBot is an extremely aggressive bot that shoves frequently
type ManiacBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewManiacBot creates a new ManiacBot instance
func NewManiacBot(rng *rand.Rand, logger *log.Logger) *ManiacBot {
	return &ManiacBot{rng: rng, logger: logger}
}

func (m *ManiacBot) RequestAction(_ context.Context, req game.ActionRequest) (game.Action, error) {
	canRaise := req.MaxRaise > req.ToCall

	if req.ToCall == 0 {
		// maniacs prefer to bet
		if !canRaise || m.rng.Float64() >= 0.85 {
			return game.Action{Kind: game.Check}, nil
		}
		if m.rng.Float64() < 0.3 {
			m.logger.Debug("Shoving", "seat", req.Seat, "stack", req.Stack)
			return game.NewRaise(req.MaxRaise), nil
		}
		return game.NewRaise(between(req, 0.75)), nil
	}

	switch v := m.rng.Float64(); {
	case v < 0.4 && canRaise:
		m.logger.Debug("Shoving over a bet", "seat", req.Seat, "stack", req.Stack)
		return game.NewRaise(req.MaxRaise), nil
	case v < 0.8:
		return game.Action{Kind: game.Call}, nil
	default:
		return game.Action{Kind: game.Fold}, nil
	}
}
