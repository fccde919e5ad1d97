package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/simulator"
	"github.com/lox/holdemtable/internal/statistics"
)

// SimulateCmd plays hands between built-in bots without a server
type SimulateCmd struct {
	Hands   int           `default:"1000" help:"Number of hands to play"`
	Bots    []string      `default:"tag,maniac,random,call" help:"Bot strategy per seat"`
	Seed    int64         `help:"Random seed; 0 uses the current time"`
	Blind   int64         `default:"1" help:"Small blind; the big blind is twice this"`
	Timeout time.Duration `default:"1s" help:"Decision timeout per action"`
	Debug   bool          `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	level := log.InfoLevel
	if c.Debug {
		level = log.DebugLevel
	}
	logger := newLogger(level)

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("Starting simulation", "hands", c.Hands, "bots", c.Bots, "seed", seed)

	sim, err := simulator.New(simulator.Config{
		Hands:      c.Hands,
		Strategies: c.Bots,
		Seed:       seed,
		Blind:      game.Chips(c.Blind),
		Timeout:    c.Timeout,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	report, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	logger.Info("Simulation complete",
		"hands", report.Hands,
		"duration", elapsed.Round(time.Millisecond),
		"hands_per_sec", fmt.Sprintf("%.0f", float64(report.Hands)/elapsed.Seconds()),
		"chips", report.Chips)

	for _, p := range report.Players {
		printSummary(p)
	}
	return nil
}

func printSummary(s *statistics.Statistics) {
	low, high := s.ConfidenceInterval95()
	fmt.Printf("\n=== %s ===\n", s.Name)
	fmt.Printf("Hands: %d, rebuys: %d\n", s.Hands, s.Rebuys)
	fmt.Printf("Mean: %.4f bb/hand (95%% CI [%.4f, %.4f])\n", s.Mean(), low, high)
	fmt.Printf("Median: %.4f bb, std dev %.4f bb\n", s.Median(), s.StdDev())
	fmt.Printf("Percentiles: P5=%.3f P25=%.3f P75=%.3f P95=%.3f\n",
		s.Percentile(0.05), s.Percentile(0.25), s.Percentile(0.75), s.Percentile(0.95))
	fmt.Printf("Wins: %d at showdown, %d uncontested\n", s.ShowdownWins, s.NonShowdownWins)
	fmt.Printf("Largest pot: %.1f bb\n", s.MaxPotBB)
	for pos := range s.Positions {
		if s.Positions[pos].Hands > 0 {
			fmt.Printf("Position %d: %d hands, %.3f bb/hand\n", pos, s.Positions[pos].Hands, s.PositionMean(pos))
		}
	}
}
