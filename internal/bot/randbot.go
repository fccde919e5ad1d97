package bot

import (
	"context"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemtable/internal/game"
)

// RandBot picks uniformly between the available action kinds, raising a
// random amount in the legal range
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger}
}

func (r *RandBot) RequestAction(_ context.Context, req game.ActionRequest) (game.Action, error) {
	kinds := []game.ActionKind{game.Fold, game.Call}
	if req.ToCall == 0 {
		kinds = []game.ActionKind{game.Check}
	}
	if req.MaxRaise > req.ToCall {
		kinds = append(kinds, game.Raise)
	}

	kind := kinds[r.rng.Intn(len(kinds))]
	if kind != game.Raise {
		return game.Action{Kind: kind}, nil
	}
	amount := between(req, r.rng.Float64())
	r.logger.Debug("Random raise", "seat", req.Seat, "amount", amount)
	return game.NewRaise(amount), nil
}
