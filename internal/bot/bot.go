// Package bot provides computer controlled players for filling tables.
// A bot answers immediately and is not safe for use by more than one seat.
package bot

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemtable/internal/game"
)

// ErrUnknownStrategy is returned by New for an unregistered strategy name
var ErrUnknownStrategy = errors.New("unknown bot strategy")

type factory func(rng *rand.Rand, logger *log.Logger) game.Controller

var strategies = map[string]factory{
	"call":   func(_ *rand.Rand, l *log.Logger) game.Controller { return NewCallBot(l) },
	"fold":   func(_ *rand.Rand, l *log.Logger) game.Controller { return NewFoldBot(l) },
	"random": func(r *rand.Rand, l *log.Logger) game.Controller { return NewRandBot(r, l) },
	"maniac": func(r *rand.Rand, l *log.Logger) game.Controller { return NewManiacBot(r, l) },
	"tag":    func(r *rand.Rand, l *log.Logger) game.Controller { return NewTAGBot(r, l) },
}

// New creates a bot for the named strategy
func New(strategy string, rng *rand.Rand, logger *log.Logger) (game.Controller, error) {
	f, ok := strategies[strings.ToLower(strategy)]
	if !ok {
		return nil, fmt.Errorf("%q: %w (have %s)", strategy, ErrUnknownStrategy, strings.Join(Strategies(), ", "))
	}
	return f(rng, logger.WithPrefix(strategy+"-bot")), nil
}

// Strategies lists the registered strategy names
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// between returns a raise size in [req.MinRaise, req.MaxRaise] at fraction
// f of the way through the range
func between(req game.ActionRequest, f float64) game.Chips {
	span := req.MaxRaise - req.MinRaise
	if span <= 0 {
		return req.MaxRaise
	}
	return req.MinRaise + game.Chips(float64(span)*f)
}
