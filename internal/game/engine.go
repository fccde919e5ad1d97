package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// EngineConfig holds the pacing of a table
type EngineConfig struct {
	PhaseDelay    time.Duration // pause between phases
	ShowdownDelay time.Duration // pause after a showdown
	ActionTimeout time.Duration // time a seat has to act
}

// DefaultEngineConfig returns the standard table pacing
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PhaseDelay:    time.Second,
		ShowdownDelay: 2 * time.Second,
		ActionTimeout: 15 * time.Second,
	}
}

type command struct {
	fn     func() error
	notify bool
	done   chan error
}

type actionReply struct {
	action Action
	err    error
}

// Engine drives one table. All table state is owned by the goroutine
// running Run; other goroutines talk to it through commands.
type Engine struct {
	table       *Table
	cfg         EngineConfig
	clock       quartz.Clock
	notifier    Notifier
	logger      *log.Logger
	controllers map[string]Controller

	cmds    chan command
	done    chan struct{}
	running bool

	startingChips Chips // chips on the table when the hand started
}

// NewEngine creates an engine for table. The engine starts paused.
func NewEngine(table *Table, cfg EngineConfig, clock quartz.Clock, notifier Notifier, logger *log.Logger) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{
		table:       table,
		cfg:         cfg,
		clock:       clock,
		notifier:    notifier,
		logger:      logger.WithPrefix("engine"),
		controllers: make(map[string]Controller),
		cmds:        make(chan command),
		done:        make(chan struct{}),
	}
}

// Done is closed when Run returns
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Join seats a player. Players joining during a hand wait for the next one.
func (e *Engine) Join(ctx context.Context, id Identity, seat int) error {
	return e.do(ctx, true, func() error {
		p, err := e.table.Join(id.ID, id.Name, seat)
		if err != nil {
			return err
		}
		if id.Controller != nil {
			e.controllers[id.ID] = id.Controller
		}
		if e.table.InProgress() {
			e.startingChips += p.Stack
		}
		e.logger.Info("Player joined", "player", id.Name, "seat", seat, "stack", p.Stack)
		return nil
	})
}

// Leave vacates seat. A player with a stake in the hand is kept until it ends.
func (e *Engine) Leave(ctx context.Context, seat int) error {
	return e.do(ctx, true, func() error {
		return e.leave(seat)
	})
}

// LeavePlayer vacates the seat held by playerID
func (e *Engine) LeavePlayer(ctx context.Context, playerID string) error {
	return e.do(ctx, true, func() error {
		p := e.table.FindPlayer(playerID)
		if p == nil {
			return fmt.Errorf("player %s: %w", playerID, ErrNoPlayer)
		}
		return e.leave(p.Seat)
	})
}

func (e *Engine) leave(seat int) error {
	p := e.table.Player(seat)
	if p == nil {
		return fmt.Errorf("seat %d: %w", seat, ErrNoPlayer)
	}
	removed, err := e.table.Leave(seat)
	if err != nil {
		return err
	}
	if removed {
		delete(e.controllers, p.ID)
		if e.table.InProgress() {
			e.startingChips -= p.Stack
		}
	}
	e.logger.Info("Player left", "player", p.Name, "seat", seat, "deferred", !removed)
	return nil
}

// ChangeSeat moves a player who is not in the current hand
func (e *Engine) ChangeSeat(ctx context.Context, from, to int) error {
	return e.do(ctx, true, func() error {
		return e.table.ChangeSeat(from, to)
	})
}

// Rename changes the display name of a seated player
func (e *Engine) Rename(ctx context.Context, seat int, name string) error {
	return e.do(ctx, true, func() error {
		return e.table.Rename(seat, name)
	})
}

// Start resumes play, or starts the first hand
func (e *Engine) Start(ctx context.Context) error {
	return e.do(ctx, true, func() error {
		if !e.running {
			e.logger.Info("Table started")
		}
		e.running = true
		return nil
	})
}

// Pause stops play at the next phase boundary. An action already requested
// still completes first.
func (e *Engine) Pause(ctx context.Context) error {
	return e.do(ctx, true, func() error {
		if e.running {
			e.logger.Info("Table paused", "phase", e.table.Phase(), "turn", e.table.Turn())
		}
		e.running = false
		return nil
	})
}

// Snapshot returns the current public table state
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := e.do(ctx, false, func() error {
		s = e.snapshot()
		return nil
	})
	return s, err
}

func (e *Engine) snapshot() Snapshot {
	s := e.table.Snapshot()
	s.Paused = !e.running
	return s
}

func (e *Engine) do(ctx context.Context, notify bool, fn func() error) error {
	cmd := command{fn: fn, notify: notify, done: make(chan error, 1)}
	select {
	case e.cmds <- cmd:
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) handle(cmd command) {
	err := cmd.fn()
	cmd.done <- err
	if err == nil && cmd.notify {
		e.notifier.TableState(e.snapshot())
	}
}

// Run plays hands until ctx is cancelled. It returns an error only for an
// invariant violation, which leaves the table unusable.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)

	for {
		if ctx.Err() != nil {
			return nil
		}
		if !e.running {
			select {
			case cmd := <-e.cmds:
				e.handle(cmd)
			case <-ctx.Done():
				return nil
			}
			continue
		}

		delay, err := e.step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			e.logger.Error("Table stopped", "error", err, "hand", e.table.HandNumber(), "phase", e.table.Phase())
			return err
		}
		e.notifier.TableState(e.snapshot())

		if delay > 0 && e.running {
			if err := e.sleep(ctx, delay); err != nil {
				return nil
			}
		}
	}
}

// step performs one transition and returns the pacing delay that follows it
func (e *Engine) step(ctx context.Context) (time.Duration, error) {
	t := e.table

	switch {
	case !t.InProgress():
		if err := t.StartHand(); err != nil {
			if errors.Is(err, ErrNotEnoughPlayer) {
				e.logger.Info("Waiting for players", "seated", t.SeatedCount())
				e.running = false
				return 0, nil
			}
			return 0, err
		}
		e.startingChips = t.TotalChips()
		e.logger.Info("Hand started", "hand", t.HandNumber(), "players", t.InHandCount())
		return e.cfg.PhaseDelay, nil

	case t.Phase() == PreHand:
		if err := t.DealPreflop(); err != nil {
			return 0, err
		}
		for _, p := range t.Players() {
			if p.InHand {
				e.notifier.HoleCards(p.ID, p.Seat, p.Hole)
			}
		}
		e.logger.Debug("Blinds posted", "button", t.Button(), "toMatch", t.ToMatch())
		return 0, nil

	case t.Phase().Betting():
		if !t.RoundResolved() {
			return 0, e.playTurn(ctx)
		}
		if err := t.EndRound(); err != nil {
			return 0, err
		}
		if t.InHandCount() > 1 && t.Phase() != River {
			if err := t.DealStreet(); err != nil {
				return 0, err
			}
			e.logger.Debug("Street dealt", "phase", t.Phase(), "board", t.Board())
			return e.cfg.PhaseDelay, nil
		}
		result, err := t.Showdown()
		if err != nil {
			return 0, err
		}
		if err := e.validateChipConservation(); err != nil {
			return 0, err
		}
		for _, a := range result.Awards {
			e.logger.Info("Pot awarded", "hand", result.HandNumber, "player", a.Name, "amount", a.Amount, "holding", a.Hand)
		}
		return e.cfg.ShowdownDelay, nil

	case t.Phase() == Showdown:
		removed, err := t.EndHand()
		if err != nil {
			return 0, err
		}
		for _, p := range removed {
			delete(e.controllers, p.ID)
			e.logger.Info("Player removed", "player", p.Name, "seat", p.Seat, "stack", p.Stack)
		}
		return 0, nil
	}

	return 0, fmt.Errorf("unexpected phase %s: %w", t.Phase(), ErrWrongPhase)
}

func (e *Engine) playTurn(ctx context.Context) error {
	t := e.table
	p := t.Player(t.Turn())
	if p == nil {
		return ErrNoEligibleSeat
	}

	action, reason, err := e.awaitAction(ctx, p)
	if err != nil {
		return err
	}
	res, err := t.Act(action)
	if err != nil {
		return err
	}

	if reason != "" || res.Reinterpreted() {
		e.logger.Warn("Action replaced", "player", p.Name, "requested", action, "applied", res.Kind, "reason", reason)
	}
	e.logger.Debug("Player acted", "player", p.Name, "action", res.Kind, "amount", res.Amount, "allIn", res.AllIn)
	return nil
}

// awaitAction asks the player's controller for a decision and waits for the
// reply, the deadline or the seat being vacated, whichever comes first.
// Commands keep being served while waiting; a pause only takes effect
// after this action is applied.
func (e *Engine) awaitAction(ctx context.Context, p *Player) (Action, string, error) {
	if !p.Seated {
		return Action{Kind: Fold}, "vacant", nil
	}
	ctrl := e.controllers[p.ID]
	if ctrl == nil {
		return DefaultAction(), "no controller", nil
	}

	timer := e.clock.NewTimer(e.cfg.ActionTimeout, "engine", "action")
	defer timer.Stop()

	req, _ := e.table.NewActionRequest(e.clock.Now().Add(e.cfg.ActionTimeout))
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	replies := make(chan actionReply, 1)
	go func() {
		a, err := ctrl.RequestAction(reqCtx, req)
		replies <- actionReply{action: a, err: err}
	}()

	for {
		select {
		case r := <-replies:
			if r.err != nil {
				e.logger.Warn("Controller failed", "player", p.Name, "error", r.err)
				return DefaultAction(), "controller error", nil
			}
			return r.action, "", nil

		case <-timer.C:
			return DefaultAction(), "timeout", nil

		case cmd := <-e.cmds:
			e.handle(cmd)
			if !p.Seated || e.table.Player(p.Seat) != p {
				return Action{Kind: Fold}, "vacated", nil
			}

		case <-ctx.Done():
			return Action{}, "", ctx.Err()
		}
	}
}

// sleep waits out a pacing delay while serving commands. A pause ends the
// wait early.
func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	timer := e.clock.NewTimer(d, "engine", "pacing")
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return nil
		case cmd := <-e.cmds:
			e.handle(cmd)
			if !e.running {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// validateChipConservation checks that settling the hand neither created
// nor destroyed chips
func (e *Engine) validateChipConservation() error {
	total := e.table.TotalChips()
	if total != e.startingChips {
		return fmt.Errorf("hand %d: started with %d chips, ended with %d: %w",
			e.table.HandNumber(), e.startingChips, total, ErrChipConservation)
	}
	return nil
}
