package game

import (
	"fmt"
	"sort"

	"github.com/lox/holdemtable/internal/deck"
	"github.com/lox/holdemtable/internal/evaluator"
)

// Award is an amount paid to one seat at showdown
type Award struct {
	Seat     int    `json:"seat"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Amount   Chips  `json:"amount"`
	Hand     string `json:"hand,omitempty"`
}

// HandResult summarises a settled hand
type HandResult struct {
	HandNumber  int         `json:"handNumber"`
	Board       []deck.Card `json:"board"`
	Pot         Chips       `json:"pot"`
	Awards      []Award     `json:"awards"`
	Uncontested bool        `json:"uncontested"`
}

type contender struct {
	player *Player
	value  evaluator.HandValue
}

// Showdown settles the pot. With one player left it takes everything;
// otherwise hands are ranked into tiers and each tier is paid from side
// pots bounded by its members' contributions, best tier first.
func (t *Table) Showdown() (*HandResult, error) {
	if !t.inProgress || !t.phase.Betting() || !t.RoundResolved() || t.streetPot != 0 {
		return nil, fmt.Errorf("showdown during %s: %w", t.phase, ErrWrongPhase)
	}
	t.phase = Showdown
	t.turn = NoSeat

	var staked Chips
	for _, p := range t.seats {
		if p != nil {
			staked += p.TotalBet
		}
	}
	if staked != t.pot {
		return nil, fmt.Errorf("pot %d but contributions %d: %w", t.pot, staked, ErrPotImbalance)
	}

	result := &HandResult{
		HandNumber: t.handNum,
		Board:      t.Board(),
		Pot:        t.pot,
	}

	if t.InHandCount() == 1 {
		winner := t.seats[t.nextInHand(NoSeat)]
		winner.TopUp(t.pot)
		result.Uncontested = true
		result.Awards = []Award{{Seat: winner.Seat, PlayerID: winner.ID, Name: winner.Name, Amount: t.pot}}
		t.pot = 0
		t.lastResult = result
		return result, nil
	}

	t.reveal()
	tiers, err := t.rankTiers()
	if err != nil {
		return nil, err
	}

	stake := make(map[int]Chips, len(t.seats))
	for _, p := range t.seats {
		if p != nil && p.TotalBet > 0 {
			stake[p.Seat] = p.TotalBet
		}
	}

	paid := make(map[int]Chips)
	hands := make(map[int]string)
	remaining := t.pot

	for _, tier := range tiers {
		if remaining == 0 {
			break
		}
		members := t.orderFromButton(tier)
		for len(members) > 0 && remaining > 0 {
			m := stake[members[0].player.Seat]
			for _, c := range members[1:] {
				m = min(m, stake[c.player.Seat])
			}

			var side Chips
			for seat, s := range stake {
				take := min(m, s)
				stake[seat] = s - take
				side += take
			}

			share := side / Chips(len(members))
			odd := side % Chips(len(members))
			for i, c := range members {
				amount := share
				if Chips(i) < odd {
					amount++
				}
				c.player.TopUp(amount)
				paid[c.player.Seat] += amount
				hands[c.player.Seat] = c.value.String()
			}
			remaining -= side

			kept := members[:0]
			for _, c := range members {
				if stake[c.player.Seat] > 0 {
					kept = append(kept, c)
				}
			}
			members = kept
		}
	}

	if remaining != 0 {
		return nil, fmt.Errorf("%d chips left after all tiers: %w", remaining, ErrPotImbalance)
	}
	t.pot = 0

	for _, p := range t.seats {
		if p != nil && paid[p.Seat] > 0 {
			result.Awards = append(result.Awards, Award{
				Seat: p.Seat, PlayerID: p.ID, Name: p.Name, Amount: paid[p.Seat], Hand: hands[p.Seat],
			})
		}
	}
	t.lastResult = result
	return result, nil
}

// rankTiers groups in-hand players by hand strength, best first
func (t *Table) rankTiers() ([][]contender, error) {
	var all []contender
	for _, p := range t.seats {
		if p == nil || !p.InHand {
			continue
		}
		v, err := evaluator.Evaluate(append(append([]deck.Card(nil), p.Hole...), t.board...))
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", p.Seat, err)
		}
		all = append(all, contender{player: p, value: v})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return evaluator.Compare(all[i].value, all[j].value) > 0
	})

	var tiers [][]contender
	for i, c := range all {
		if i == 0 || evaluator.Compare(all[i-1].value, c.value) != 0 {
			tiers = append(tiers, nil)
		}
		tiers[len(tiers)-1] = append(tiers[len(tiers)-1], c)
	}
	return tiers, nil
}

// orderFromButton sorts contenders clockwise starting with the first seat
// after the button. Odd chips from a split go out in this order.
func (t *Table) orderFromButton(cs []contender) []contender {
	n := len(t.seats)
	out := append([]contender(nil), cs...)
	dist := func(seat int) int { return (seat - t.button - 1 + 2*n) % n }
	sort.Slice(out, func(i, j int) bool {
		return dist(out[i].player.Seat) < dist(out[j].player.Seat)
	})
	return out
}
