package bot

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/lox/holdemtable/internal/deck"
	"github.com/lox/holdemtable/internal/evaluator"
	"github.com/lox/holdemtable/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(toCall, stack game.Chips, hole, board string) game.ActionRequest {
	req := game.ActionRequest{
		Phase:    game.Flop,
		Stack:    stack,
		ToCall:   min(toCall, stack),
		MinRaise: min(toCall+4, stack),
		MaxRaise: stack,
		Pot:      20,
		Hole:     deck.MustParseCards(hole),
		Board:    deck.MustParseCards(board),
	}
	if board == "" {
		req.Phase = game.PreFlop
	}
	return req
}

func TestNew(t *testing.T) {
	for _, name := range Strategies() {
		b, err := New(name, rand.New(rand.NewSource(1)), game.QuietLogger())
		require.NoError(t, err, name)
		assert.NotNil(t, b)
	}

	_, err := New("shark", rand.New(rand.NewSource(1)), game.QuietLogger())
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	assert.Equal(t, []string{"call", "fold", "maniac", "random", "tag"}, Strategies())
}

func TestCallAndFoldBots(t *testing.T) {
	ctx := context.Background()
	logger := game.QuietLogger()

	tests := []struct {
		name   string
		bot    game.Controller
		toCall game.Chips
		want   game.ActionKind
	}{
		{"call bot checks", NewCallBot(logger), 0, game.Check},
		{"call bot calls", NewCallBot(logger), 10, game.Call},
		{"fold bot checks", NewFoldBot(logger), 0, game.Check},
		{"fold bot folds", NewFoldBot(logger), 10, game.Fold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := tt.bot.RequestAction(ctx, request(tt.toCall, 100, "2c7d", ""))
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Kind)
		})
	}
}

func TestRaisesStayInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	logger := game.QuietLogger()
	bots := []game.Controller{NewRandBot(rng, logger), NewManiacBot(rng, logger), NewTAGBot(rng, logger)}

	for i := 0; i < 500; i++ {
		req := request(game.Chips(rng.Intn(30)), game.Chips(1+rng.Intn(200)), "AsAh", "")
		for _, b := range bots {
			a, err := b.RequestAction(context.Background(), req)
			require.NoError(t, err)
			if a.Kind == game.Raise {
				require.True(t, a.HasAmount)
				assert.GreaterOrEqual(t, a.Amount, req.MinRaise)
				assert.LessOrEqual(t, a.Amount, req.MaxRaise)
			}
			if req.ToCall == 0 {
				assert.NotEqual(t, game.Fold, a.Kind, "no bot folds for free")
			}
		}
	}
}

func TestTAGBot(t *testing.T) {
	ctx := context.Background()
	b := NewTAGBot(rand.New(rand.NewSource(1)), game.QuietLogger())

	a, err := b.RequestAction(ctx, request(2, 200, "AsAh", ""))
	require.NoError(t, err)
	assert.Equal(t, game.Raise, a.Kind)

	a, err = b.RequestAction(ctx, request(0, 200, "9c9d", "2h5s9h"))
	require.NoError(t, err)
	assert.Equal(t, game.Raise, a.Kind, "bets a set")

	a, err = b.RequestAction(ctx, request(0, 200, "2c7d", "AhKsQh"))
	require.NoError(t, err)
	assert.Equal(t, game.Check, a.Kind)
}

func TestPreflopStrength(t *testing.T) {
	tests := []struct {
		hole string
		want int
	}{
		{"AsAh", 2},
		{"TcTd", 2},
		{"KsAd", 2},
		{"5c5d", 1},
		{"KhJh", 1},
		{"Ac9c", 0},
		{"7c2d", 0},
	}
	for _, tt := range tests {
		cards := deck.MustParseCards(tt.hole)
		assert.Equal(t, tt.want, preflopStrength(cards[0], cards[1]), tt.hole)
	}

	hv := evaluator.MustEvaluate(deck.MustParseCards("AsAh Kd Kc 2s"))
	assert.Equal(t, 2, postflopStrength(hv))
}

// Every strategy seated together must play a long session without the
// table losing chips.
func TestBotsPlaySession(t *testing.T) {
	names := Strategies()
	tb := game.NewTestTable(game.WithPlayers(names...), game.WithMaxSeats(len(names)))
	total := tb.TotalChips()

	rng := rand.New(rand.NewSource(11))
	bots := make(map[string]game.Controller)
	for _, name := range names {
		b, err := New(name, rng, game.QuietLogger())
		require.NoError(t, err)
		bots[name] = b
	}

	for hand := 0; hand < 200 && tb.SeatedCount() >= 2; hand++ {
		require.NoError(t, tb.StartHand())
		require.NoError(t, tb.DealPreflop())
		for {
			for !tb.RoundResolved() {
				req, ok := tb.NewActionRequest(time.Now())
				require.True(t, ok)
				a, err := bots[req.PlayerID].RequestAction(context.Background(), req)
				require.NoError(t, err)
				_, err = tb.Act(a)
				require.NoError(t, err)
			}
			require.NoError(t, tb.EndRound())
			if tb.InHandCount() > 1 && tb.Phase() != game.River {
				require.NoError(t, tb.DealStreet())
				continue
			}
			_, err := tb.Showdown()
			require.NoError(t, err)
			break
		}
		_, err := tb.EndHand()
		require.NoError(t, err)
		require.Equal(t, total, tb.TotalChips())
	}
}
