package bot

import (
	"context"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemtable/internal/deck"
	"github.com/lox/holdemtable/internal/evaluator"
	"github.com/lox/holdemtable/internal/game"
)

// TAGBot is a tight aggressive bot: it plays premium starting hands and
// bets made hands after the flop
type TAGBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

// NewTAGBot creates a new TAGBot instance
func NewTAGBot(rng *rand.Rand, logger *log.Logger) *TAGBot {
	return &TAGBot{rng: rng, logger: logger}
}

func (t *TAGBot) RequestAction(_ context.Context, req game.ActionRequest) (game.Action, error) {
	if len(req.Hole) != 2 {
		return passive(req), nil
	}

	var strength int
	if len(req.Board) == 0 {
		strength = preflopStrength(req.Hole[0], req.Hole[1])
	} else {
		hv, err := evaluator.Evaluate(append(append([]deck.Card(nil), req.Hole...), req.Board...))
		if err != nil {
			return game.Action{}, err
		}
		strength = postflopStrength(hv)
	}

	canRaise := req.MaxRaise > req.ToCall
	t.logger.Debug("Hand strength", "seat", req.Seat, "phase", req.Phase, "hole", deck.FormatCards(req.Hole), "strength", strength)

	switch {
	case strength >= 2 && canRaise:
		return game.NewRaise(between(req, 0.25)), nil
	case strength >= 1:
		if req.ToCall == 0 {
			return game.Action{Kind: game.Check}, nil
		}
		return game.Action{Kind: game.Call}, nil
	case req.ToCall > 0 && t.rng.Float64() < 0.1:
		return game.Action{Kind: game.Call}, nil
	default:
		return passive(req), nil
	}
}

// passive checks when free and folds otherwise
func passive(req game.ActionRequest) game.Action {
	if req.ToCall == 0 {
		return game.Action{Kind: game.Check}
	}
	return game.Action{Kind: game.Fold}
}

// preflopStrength grades a starting hand: 2 for TT+ and AK/AQ, 1 for
// other pairs and two broadway cards, 0 otherwise
func preflopStrength(a, b deck.Card) int {
	hi, lo := a.Rank, b.Rank
	if lo > hi {
		hi, lo = lo, hi
	}
	switch {
	case hi == lo && hi >= deck.Ten:
		return 2
	case hi == deck.Ace && lo >= deck.Queen:
		return 2
	case hi == lo, lo >= deck.Ten:
		return 1
	default:
		return 0
	}
}

func postflopStrength(hv evaluator.HandValue) int {
	switch {
	case hv.Class >= evaluator.TwoPair:
		return 2
	case hv.Class == evaluator.Pair:
		return 1
	default:
		return 0
	}
}
