// Package simulator plays bot-only hands on a local table and tallies the
// results per player.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Hands      int
	Strategies []string // one bot per seat
	Seed       int64
	Blind      game.Chips
	Timeout    time.Duration // per decision
	Logger     *log.Logger
}

// Report is the outcome of a simulation
type Report struct {
	Hands    int
	Players  []*statistics.Statistics // in seat order
	Chips    game.Chips               // chips on the table at the end
	BoughtIn game.Chips               // initial stacks plus rebuys
}

// Simulator runs bot hands on a single table. Busted bots buy in again so
// every seat plays every hand.
type Simulator struct {
	config  Config
	table   *game.Table
	bots    []game.Controller
	players []*statistics.Statistics
	logger  *log.Logger
	bought  game.Chips
}

// New seats one bot per strategy
func New(config Config) (*Simulator, error) {
	if len(config.Strategies) < 2 {
		return nil, fmt.Errorf("need at least 2 bots, have %d", len(config.Strategies))
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Second
	}
	logger := config.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	rng := rand.New(rand.NewSource(config.Seed))
	s := &Simulator{
		config: config,
		table:  game.NewTable(rng, game.TableConfig{MaxSeats: len(config.Strategies), Blind: config.Blind}),
		logger: logger.WithPrefix("simulator"),
	}

	for seat, strategy := range config.Strategies {
		b, err := bot.New(strategy, rand.New(rand.NewSource(config.Seed+int64(seat)+1)), logger)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("%s-%d", strategy, seat)
		p, err := s.table.Join(name, name, seat)
		if err != nil {
			return nil, err
		}
		s.bought += p.Stack
		s.bots = append(s.bots, b)
		s.players = append(s.players, statistics.New(name, len(config.Strategies)))
	}
	return s, nil
}

// Run plays the configured number of hands
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	for hand := 0; hand < s.config.Hands; hand++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.playHand(ctx); err != nil {
			return nil, fmt.Errorf("hand %d: %w", hand+1, err)
		}
		if err := s.rebuy(); err != nil {
			return nil, err
		}
		if s.table.TotalChips() != s.bought {
			return nil, fmt.Errorf("hand %d: %d chips on the table, %d bought in: %w",
				hand+1, s.table.TotalChips(), s.bought, game.ErrChipConservation)
		}
	}

	for _, p := range s.players {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return &Report{
		Hands:    s.config.Hands,
		Players:  s.players,
		Chips:    s.table.TotalChips(),
		BoughtIn: s.bought,
	}, nil
}

func (s *Simulator) playHand(ctx context.Context) error {
	tb := s.table
	before := make(map[int]game.Chips)
	for _, p := range tb.Players() {
		before[p.Seat] = p.Stack
	}

	if err := tb.StartHand(); err != nil {
		return err
	}
	button := tb.Button()
	if err := tb.DealPreflop(); err != nil {
		return err
	}

	for {
		for !tb.RoundResolved() {
			if err := s.act(ctx); err != nil {
				return err
			}
		}
		if err := tb.EndRound(); err != nil {
			return err
		}
		if tb.InHandCount() > 1 && tb.Phase() != game.River {
			if err := tb.DealStreet(); err != nil {
				return err
			}
			continue
		}
		break
	}

	res, err := tb.Showdown()
	if err != nil {
		return err
	}
	showdown := make(map[int]bool)
	for _, p := range tb.Players() {
		showdown[p.Seat] = p.InHand && !res.Uncontested
	}

	players := tb.Players()
	if _, err := tb.EndHand(); err != nil {
		return err
	}

	bb := float64(2 * tb.Config().Blind)
	seats := tb.Config().MaxSeats
	for _, p := range players {
		s.players[p.Seat].Add(statistics.HandResult{
			NetBB:          float64(p.Stack-before[p.Seat]) / bb,
			Position:       (p.Seat - button + seats) % seats,
			WentToShowdown: showdown[p.Seat],
			PotBB:          float64(res.Pot) / bb,
		})
	}
	s.logger.Debug("Hand complete", "hand", res.HandNumber, "pot", res.Pot, "awards", len(res.Awards))
	return nil
}

func (s *Simulator) act(ctx context.Context) error {
	req, ok := s.table.NewActionRequest(time.Now().Add(s.config.Timeout))
	if !ok {
		return game.ErrNoEligibleSeat
	}

	actx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	a, err := s.bots[req.Seat].RequestAction(actx, req)
	cancel()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("seat %d did not act within %s", req.Seat, s.config.Timeout)
	}
	if err != nil {
		s.logger.Warn("Bot failed, applying default action", "seat", req.Seat, "error", err)
		a = game.DefaultAction()
	}

	_, err = s.table.Act(a)
	return err
}

// rebuy reseats busted bots with a fresh stack
func (s *Simulator) rebuy() error {
	for seat, stats := range s.players {
		if s.table.Player(seat) != nil {
			continue
		}
		p, err := s.table.Join(stats.Name, stats.Name, seat)
		if err != nil {
			return fmt.Errorf("rebuy seat %d: %w", seat, err)
		}
		s.bought += p.Stack
		stats.Rebuys++
	}
	return nil
}
