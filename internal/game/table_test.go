package game

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/lox/holdemtable/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHand(t *testing.T, tb *Table, cards string) {
	t.Helper()
	require.NoError(t, tb.StartHand())
	if cards != "" {
		tb.StackDeck(deck.MustParseCards(cards))
	}
	require.NoError(t, tb.DealPreflop())
}

func act(t *testing.T, tb *Table, a Action) ActionResult {
	t.Helper()
	res, err := tb.Act(a)
	require.NoError(t, err)
	return res
}

// settle checks the hand down to the showdown and returns the result
func settle(t *testing.T, tb *Table) *HandResult {
	t.Helper()
	for {
		for !tb.RoundResolved() {
			act(t, tb, Action{Kind: Check})
		}
		require.NoError(t, tb.EndRound())
		if tb.InHandCount() > 1 && tb.Phase() != River {
			require.NoError(t, tb.DealStreet())
			continue
		}
		res, err := tb.Showdown()
		require.NoError(t, err)
		return res
	}
}

func TestHeadsUpBlinds(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("Alice", "Bob"))
	startHand(t, tb, "")

	assert.Equal(t, 0, tb.Button())
	assert.Equal(t, 0, tb.smallBlind, "button posts the small blind heads-up")
	assert.Equal(t, 1, tb.bigBlind)
	assert.Equal(t, Chips(1), tb.Player(0).StreetBet)
	assert.Equal(t, Chips(2), tb.Player(1).StreetBet)
	assert.Equal(t, 0, tb.Turn(), "button acts first preflop")

	act(t, tb, Action{Kind: Call})
	assert.Equal(t, 1, tb.Turn(), "big blind keeps the option")
	act(t, tb, Action{Kind: Check})
	require.True(t, tb.RoundResolved())

	require.NoError(t, tb.EndRound())
	require.NoError(t, tb.DealStreet())
	assert.Equal(t, Flop, tb.Phase())
	assert.Len(t, tb.Board(), 3)
	assert.Equal(t, 1, tb.Turn(), "button acts last after the flop")
}

func TestButtonRotationAndWalk(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B", "C"))
	startHand(t, tb, "")
	assert.Equal(t, 0, tb.Button())
	assert.Equal(t, 1, tb.smallBlind)
	assert.Equal(t, 2, tb.bigBlind)
	assert.Equal(t, 0, tb.Turn())

	act(t, tb, Action{Kind: Fold})
	act(t, tb, Action{Kind: Fold})
	require.True(t, tb.RoundResolved())
	require.NoError(t, tb.EndRound())
	require.Equal(t, 1, tb.InHandCount())

	res, err := tb.Showdown()
	require.NoError(t, err)
	assert.True(t, res.Uncontested)
	assert.Empty(t, res.Board, "no streets are revealed once everyone folds")
	assert.Equal(t, []Award{{Seat: 2, PlayerID: "c", Name: "C", Amount: 3}}, res.Awards)

	_, err = tb.EndHand()
	require.NoError(t, err)
	assert.Equal(t, Chips(200), tb.Player(0).Stack)
	assert.Equal(t, Chips(199), tb.Player(1).Stack)
	assert.Equal(t, Chips(201), tb.Player(2).Stack)

	startHand(t, tb, "")
	assert.Equal(t, 1, tb.Button())
	assert.Equal(t, 2, tb.smallBlind)
	assert.Equal(t, 0, tb.bigBlind)
	assert.Equal(t, 1, tb.Turn())
}

func TestDefaultActionChecksOrFolds(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B", "C"))
	startHand(t, tb, "")

	res := act(t, tb, DefaultAction())
	assert.Equal(t, Fold, res.Kind, "a player facing a bet is folded")
	assert.False(t, tb.Player(0).InHand)
	assert.Nil(t, tb.Player(0).Hole)

	act(t, tb, Action{Kind: Call})

	res = act(t, tb, DefaultAction())
	assert.Equal(t, Check, res.Kind, "a player who owes nothing checks")
	assert.True(t, tb.Player(2).InHand)
	assert.True(t, tb.RoundResolved())
}

func TestInvalidActionsFold(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B", "C"))
	startHand(t, tb, "")

	res := act(t, tb, Action{Kind: Raise})
	assert.Equal(t, Fold, res.Kind, "raise without an amount")
	assert.True(t, res.Reinterpreted())

	res = act(t, tb, Action{Kind: Check})
	assert.Equal(t, Fold, res.Kind, "check facing a bet")
	assert.True(t, tb.RoundResolved())
}

func TestRaiseReopensAction(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B", "C"))
	startHand(t, tb, "")

	act(t, tb, Action{Kind: Call})
	act(t, tb, Action{Kind: Call})
	require.Equal(t, 2, tb.Turn())
	assert.False(t, tb.Player(0).ToAct)
	assert.False(t, tb.Player(1).ToAct)

	act(t, tb, NewRaise(4))
	assert.True(t, tb.Player(0).ToAct)
	assert.True(t, tb.Player(1).ToAct)
	assert.False(t, tb.Player(2).ToAct)
	assert.Equal(t, 0, tb.Turn())
	assert.False(t, tb.RoundResolved())

	snap := tb.Snapshot()
	assert.True(t, snap.Seat(0).ToAct)
	assert.True(t, snap.Seat(1).ToAct)
	assert.False(t, snap.Seat(2).ToAct)
}

func TestHeadsUpReraiseReopensAction(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B"))
	startHand(t, tb, "")

	act(t, tb, Action{Kind: Call})
	act(t, tb, NewRaise(6))
	assert.True(t, tb.Player(0).ToAct)
	assert.False(t, tb.Player(1).ToAct)
	assert.Equal(t, 0, tb.Turn())
	assert.True(t, tb.Snapshot().Seat(0).ToAct)
}

func TestRaiseClamping(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B", "C"), WithBlind(5))
	startHand(t, tb, "")
	require.Equal(t, Chips(1000), tb.Player(0).Stack)

	res := act(t, tb, NewRaise(12))
	assert.Equal(t, Chips(20), res.Amount, "raised to at least the call plus the minimum raise")
	assert.Equal(t, Chips(20), tb.ToMatch())
	assert.Equal(t, Chips(10), tb.MinRaise())

	res = act(t, tb, NewRaise(100))
	assert.Equal(t, Chips(100), res.Amount)
	assert.Equal(t, Chips(105), tb.ToMatch())
	assert.Equal(t, Chips(85), tb.MinRaise())

	res = act(t, tb, NewRaise(5000))
	assert.Equal(t, Chips(990), res.Amount, "clamped to the stack")
	assert.True(t, res.AllIn)
	assert.Equal(t, Chips(1000), tb.ToMatch())
	assert.Equal(t, Chips(895), tb.MinRaise())
}

func TestShortAllInKeepsAmountToMatch(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B", "C"), WithBlind(5), WithStacks(1000, 1000, 30))
	startHand(t, tb, "")

	act(t, tb, NewRaise(100))
	act(t, tb, Action{Kind: Call})
	res := act(t, tb, NewRaise(500))
	assert.Equal(t, Call, res.Kind)
	assert.Equal(t, Chips(20), res.Amount)
	assert.True(t, res.AllIn)
	assert.Equal(t, Chips(100), tb.ToMatch())
	require.True(t, tb.RoundResolved())

	require.NoError(t, tb.EndRound())
	assert.Equal(t, Chips(230), tb.Pot())
	assert.Equal(t, Chips(0), tb.StreetPot())
}

func TestUncalledChipsReturned(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B"), WithStacks(200, 50))
	startHand(t, tb, "")

	act(t, tb, NewRaise(199))
	res := act(t, tb, Action{Kind: Call})
	assert.Equal(t, Chips(48), res.Amount)
	require.True(t, tb.RoundResolved())

	require.NoError(t, tb.EndRound())
	a := tb.Player(0)
	assert.Equal(t, Chips(150), a.Stack)
	assert.Equal(t, Chips(50), a.TotalBet)
	assert.Equal(t, Chips(100), tb.Pot())
	assert.False(t, a.ToAct, "no betting when only one player has chips")

	require.NoError(t, tb.DealStreet())
	assert.True(t, tb.RoundResolved())
	assert.True(t, a.Showing, "hands are turned up for the run-out")
}

func TestFoldedContributionsCountAsCalled(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B", "C"), WithStacks(1000, 1000, 80))
	startHand(t, tb, "2c3d KcKd AsAh Ad9h5c 4s Jd")

	act(t, tb, NewRaise(250))
	act(t, tb, NewRaise(649))
	act(t, tb, Action{Kind: Call})
	act(t, tb, DefaultAction())
	require.True(t, tb.RoundResolved())

	require.NoError(t, tb.EndRound())
	assert.Equal(t, Chips(750), tb.Player(1).Stack, "refunded down to the folded player's 250")
	assert.Equal(t, Chips(580), tb.Pot())

	res := settle(t, tb)
	assert.Equal(t, Chips(580), res.Pot)
	assert.Equal(t, Chips(750), tb.Player(0).Stack)
	assert.Equal(t, Chips(1090), tb.Player(1).Stack)
	assert.Equal(t, Chips(240), tb.Player(2).Stack)
}

func TestJoinLeaveAndSeatChanges(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B", "C"), WithMaxSeats(4))

	_, err := tb.Join("d", "D", 1)
	assert.ErrorIs(t, err, ErrSeatTaken)
	_, err = tb.Join("d", "D", 9)
	assert.ErrorIs(t, err, ErrSeatOutOfRange)
	_, err = tb.Join("a", "A again", 3)
	assert.ErrorIs(t, err, ErrAlreadySeated)

	startHand(t, tb, "")

	// mid-hand joiners sit out the current hand
	p, err := tb.Join("d", "D", 3)
	require.NoError(t, err)
	assert.False(t, p.InHand)
	assert.Nil(t, p.Hole)

	assert.ErrorIs(t, tb.ChangeSeat(0, 3), ErrSeatTaken)
	require.NoError(t, tb.Rename(0, "Alice"))
	assert.Equal(t, "Alice", tb.Player(0).Name)

	removed, err := tb.Leave(3)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Nil(t, tb.Player(3))

	// blinds have a stake, so they stay until the hand ends
	removed, err = tb.Leave(1)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.False(t, tb.Player(1).Seated)
	assert.ErrorIs(t, tb.ChangeSeat(2, 3), ErrInHand)

	act(t, tb, Action{Kind: Fold})
	act(t, tb, DefaultAction())
	require.NoError(t, tb.EndRound())
	_, err = tb.Showdown()
	require.NoError(t, err)
	gone, err := tb.EndHand()
	require.NoError(t, err)
	require.Len(t, gone, 1)
	assert.Equal(t, "b", gone[0].ID)
	assert.Nil(t, tb.Player(1))

	require.NoError(t, tb.ChangeSeat(2, 3))
	assert.Equal(t, 3, tb.Player(3).Seat)
	assert.ErrorIs(t, tb.Rename(2, "x"), ErrNoPlayer)
}

func TestStartHandNeedsTwoPlayers(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A"))
	assert.ErrorIs(t, tb.StartHand(), ErrNotEnoughPlayer)

	tb = NewTestTable(WithPlayers("A", "B"), WithStacks(100, 0))
	assert.ErrorIs(t, tb.StartHand(), ErrNotEnoughPlayer)
}

func TestWrongPhaseTransitions(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B"))
	assert.ErrorIs(t, tb.DealPreflop(), ErrWrongPhase)
	assert.ErrorIs(t, tb.DealStreet(), ErrWrongPhase)
	_, err := tb.Act(Action{Kind: Call})
	assert.ErrorIs(t, err, ErrWrongPhase)

	startHand(t, tb, "")
	assert.ErrorIs(t, tb.StartHand(), ErrWrongPhase)
	assert.ErrorIs(t, tb.EndRound(), ErrWrongPhase, "round still open")
}

func TestSnapshotHidesHoleCards(t *testing.T) {
	t.Parallel()

	tb := NewTestTable(WithPlayers("A", "B"))
	startHand(t, tb, "AsAh KdKc 2c3d4h 9s Tc")

	snap := tb.Snapshot()
	assert.Equal(t, PreFlop, snap.Phase)
	require.NotNil(t, snap.Seat(0))
	assert.Empty(t, snap.Seat(0).Hole)
	assert.Nil(t, snap.Seat(3))

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"phase":"preflop"`)
	assert.NotContains(t, string(data), `"As"`)

	act(t, tb, Action{Kind: Call})
	res := settle(t, tb)
	require.Len(t, res.Awards, 1)
	assert.Equal(t, "a", res.Awards[0].PlayerID)
	assert.Equal(t, "Pair of Aces", res.Awards[0].Hand)

	snap = tb.Snapshot()
	assert.Equal(t, deck.MustParseCards("AsAh"), snap.Seat(0).Hole)
	assert.Equal(t, deck.MustParseCards("KdKc"), snap.Seat(1).Hole)
	require.NotNil(t, snap.LastResult)
}

// Random play over many hands must never create or destroy chips.
func TestRandomPlayConservesChips(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(99))
	kinds := []ActionKind{Check, Fold, Call, Raise}

	for game := 0; game < 20; game++ {
		tb := NewTestTable(WithSeed(int64(game)), WithPlayers("A", "B", "C", "D", "E"),
			WithStacks(40, 200, 75, 500, 13))
		total := tb.TotalChips()

		for hand := 0; hand < 50 && tb.SeatedCount() >= 2; hand++ {
			startHand(t, tb, "")
			for {
				for !tb.RoundResolved() {
					before := streetChips(tb)
					a := Action{Kind: kinds[rng.Intn(len(kinds))]}
					if a.Kind == Raise && rng.Intn(5) > 0 {
						a = NewRaise(Chips(rng.Intn(120)))
					}
					act(t, tb, a)
					require.Equal(t, before, streetChips(tb))
					require.Equal(t, total, tb.TotalChips())
				}
				require.NoError(t, tb.EndRound())
				require.Equal(t, total, tb.TotalChips())
				if tb.InHandCount() > 1 && tb.Phase() != River {
					require.NoError(t, tb.DealStreet())
					continue
				}
				res, err := tb.Showdown()
				require.NoError(t, err)
				var paid Chips
				for _, a := range res.Awards {
					paid += a.Amount
				}
				require.Equal(t, res.Pot, paid)
				break
			}
			require.Equal(t, total, tb.TotalChips())
			_, err := tb.EndHand()
			require.NoError(t, err)
		}
	}
}

func streetChips(tb *Table) Chips {
	var sum Chips
	for _, p := range tb.Players() {
		sum += p.Stack + p.StreetBet
	}
	return sum
}
