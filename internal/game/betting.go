package game

import "fmt"

// RoundResolved reports whether the current betting round is over: either
// a single player remains, or nobody is flagged to act and every player
// with chips behind has matched the amount to match.
func (t *Table) RoundResolved() bool {
	if t.InHandCount() <= 1 {
		return true
	}
	for _, p := range t.seats {
		if p == nil || !p.InHand {
			continue
		}
		if p.ToAct {
			return false
		}
		if p.Stack > 0 && p.StreetBet != t.toMatch {
			return false
		}
	}
	return true
}

// DefaultAction is applied when the acting player does not answer in time:
// a check, which folds a player facing a bet
func DefaultAction() Action {
	return Action{Kind: Check}
}

// Act applies an action for the player whose turn it is and moves the turn
// to the next eligible seat. Illegal actions are reinterpreted rather than
// rejected: an unmatched check and a raise without an amount both fold, and
// raise amounts are clamped to the legal range.
func (t *Table) Act(a Action) (ActionResult, error) {
	if !t.phase.Betting() || t.RoundResolved() {
		return ActionResult{}, fmt.Errorf("act during %s: %w", t.phase, ErrWrongPhase)
	}
	p := t.Player(t.turn)
	if p == nil || !p.CanAct() {
		return ActionResult{}, fmt.Errorf("seat %d cannot act: %w", t.turn, ErrNoEligibleSeat)
	}

	res := ActionResult{Seat: p.Seat, PlayerID: p.ID, Requested: a, Kind: a.Kind}
	p.ToAct = false
	toCall := t.toMatch - p.StreetBet

	switch a.Kind {
	case Check:
		if toCall > 0 {
			res.Kind = Fold
			t.fold(p)
		}
	case Fold:
		t.fold(p)
	case Call:
		res.Amount = min(p.Stack, toCall)
		t.commit(p, res.Amount)
	case Raise:
		if !a.HasAmount {
			res.Kind = Fold
			t.fold(p)
			break
		}
		res.Amount = min(max(a.Amount, toCall+t.minRaise), p.Stack)
		prev := t.toMatch
		t.commit(p, res.Amount)
		if p.StreetBet > prev {
			t.minRaise = max(t.minRaise, p.StreetBet-prev)
			t.toMatch = p.StreetBet
			t.reopen(p)
		} else {
			// short all-in: nothing over the amount to match
			res.Kind = Call
		}
	default:
		res.Kind = Fold
		t.fold(p)
	}
	res.AllIn = p.InHand && p.Stack == 0

	if t.RoundResolved() {
		t.turn = NoSeat
		return res, nil
	}

	// An unresolved round always has an in-hand player with chips who is
	// flagged to act or short of the amount to match, so the search finds a
	// seat.
	next := t.nextActing(p.Seat)
	if next == NoSeat {
		return res, ErrNoEligibleSeat
	}
	t.turn = next
	return res, nil
}

// reopen flags everyone but the raiser who can still bet to act again
func (t *Table) reopen(raiser *Player) {
	for _, o := range t.seats {
		if o != nil && o != raiser && o.CanAct() {
			o.ToAct = true
		}
	}
}

func (t *Table) fold(p *Player) {
	p.InHand = false
	p.ToAct = false
	p.Showing = false
	p.Hole = nil
}

// EndRound closes a resolved betting round: uncalled chips are returned,
// the street bets are swept into the pot and players with chips are
// flagged to act on the next street
func (t *Table) EndRound() error {
	if !t.phase.Betting() || !t.RoundResolved() {
		return fmt.Errorf("end round during %s: %w", t.phase, ErrWrongPhase)
	}

	if t.InHandCount() > 1 {
		t.returnUncalled()
	}

	for _, p := range t.seats {
		if p != nil {
			p.StreetBet = 0
		}
	}
	t.pot += t.streetPot
	t.streetPot = 0
	t.toMatch = 0
	t.minRaise = 2 * t.cfg.Blind
	t.turn = NoSeat

	canBet := 0
	for _, p := range t.seats {
		if p != nil && p.CanAct() {
			canBet++
		}
	}
	for _, p := range t.seats {
		if p != nil && p.CanAct() {
			p.ToAct = canBet > 1
		}
	}
	return nil
}

// returnUncalled refunds the part of the largest hand contribution that no
// other player matched. Contributions of folded players count as matched.
func (t *Table) returnUncalled() {
	var top *Player
	var second Chips
	for _, p := range t.seats {
		if p == nil || p.TotalBet == 0 {
			continue
		}
		switch {
		case top == nil || p.TotalBet > top.TotalBet:
			if top != nil {
				second = top.TotalBet
			}
			top = p
		case p.TotalBet > second:
			second = p.TotalBet
		}
	}
	if top == nil || top.TotalBet <= second {
		return
	}

	excess := min(top.TotalBet-second, top.StreetBet)
	top.StreetBet -= excess
	top.TotalBet -= excess
	top.TopUp(excess)
	t.streetPot -= excess
}
