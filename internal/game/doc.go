// Package game implements a Texas Hold'em table: seats, the hand phase
// machine, betting rounds, side pots and showdown settlement.
//
// # Table
//
// Table is a synchronous state machine with no goroutines or timers. The
// caller drives it one transition at a time:
//
//	t := game.NewTable(rng, game.TableConfig{MaxSeats: 4, Blind: 1})
//	t.Join("alice", "Alice", 0)
//	t.Join("bob", "Bob", 1)
//	t.StartHand()
//	t.DealPreflop()
//	for !t.RoundResolved() {
//	    t.Act(game.Action{Kind: game.Call})
//	}
//	t.EndRound()
//
// Chips are integer minor units (Chips). Every transition preserves the sum
// of stacks and pots; Showdown returns ErrPotImbalance if it cannot.
//
// # Engine
//
// Engine owns one Table and runs it from a single goroutine. Seat changes,
// start and pause requests are posted to it as commands, and each acting
// seat is asked for a decision through its Controller under a deadline
// measured on a quartz.Clock.
package game
