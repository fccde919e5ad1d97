package game

import (
	"context"
	"io"
	"math/rand"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemtable/internal/deck"
)

// TestTableOption configures test table creation
type TestTableOption func(*testTableBuilder)

type testTableBuilder struct {
	seed    int64
	config  TableConfig
	players []string
	stacks  []Chips
}

func WithSeed(seed int64) TestTableOption {
	return func(b *testTableBuilder) { b.seed = seed }
}

func WithMaxSeats(seats int) TestTableOption {
	return func(b *testTableBuilder) { b.config.MaxSeats = seats }
}

func WithBlind(blind Chips) TestTableOption {
	return func(b *testTableBuilder) { b.config.Blind = blind }
}

// WithPlayers seats the named players from seat 0; ids are the lowercased names
func WithPlayers(names ...string) TestTableOption {
	return func(b *testTableBuilder) { b.players = names }
}

// WithStacks overrides the starting stacks of the seated players in order
func WithStacks(stacks ...Chips) TestTableOption {
	return func(b *testTableBuilder) { b.stacks = stacks }
}

// NewTestTable creates a table for testing with sensible defaults
func NewTestTable(opts ...TestTableOption) *Table {
	builder := &testTableBuilder{
		seed:   42,
		config: TableConfig{MaxSeats: 6, Blind: 1},
	}
	for _, opt := range opts {
		opt(builder)
	}

	table := NewTable(rand.New(rand.NewSource(builder.seed)), builder.config)
	for i, name := range builder.players {
		p, err := table.Join(strings.ToLower(name), name, i)
		if err != nil {
			panic(err)
		}
		if i < len(builder.stacks) {
			p.Stack = builder.stacks[i]
		}
	}
	return table
}

// StackDeck arranges the next cards to be dealt. Hole cards go two at a
// time in seat order, then the flop, turn and river.
func (t *Table) StackDeck(cards []deck.Card) {
	t.deck.Stack(cards)
}

// QuietLogger returns a logger that discards output
func QuietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// RecordingNotifier keeps every snapshot and hole card delivery
type RecordingNotifier struct {
	mu        sync.Mutex
	snapshots []Snapshot
	hole      map[string][]deck.Card
}

func (r *RecordingNotifier) TableState(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *RecordingNotifier) HoleCards(playerID string, seat int, cards []deck.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hole == nil {
		r.hole = make(map[string][]deck.Card)
	}
	r.hole[playerID] = append([]deck.Card(nil), cards...)
}

// Snapshots returns a copy of the recorded snapshots
func (r *RecordingNotifier) Snapshots() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snapshots...)
}

// Last returns the most recent snapshot
func (r *RecordingNotifier) Last() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return Snapshot{}, false
	}
	return r.snapshots[len(r.snapshots)-1], true
}

// Result returns the settled result of the given hand, if seen
func (r *RecordingNotifier) Result(hand int) (*HandResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.snapshots {
		if s.LastResult != nil && s.LastResult.HandNumber == hand {
			return s.LastResult, true
		}
	}
	return nil, false
}

// HoleCardsFor returns the last hole cards sent to a player
func (r *RecordingNotifier) HoleCardsFor(playerID string) []deck.Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hole[playerID]
}

// ScriptedController hands each request to the test and waits for the
// test to answer it
type ScriptedController struct {
	Requests chan ActionRequest
	Replies  chan Action
}

func NewScriptedController() *ScriptedController {
	return &ScriptedController{
		Requests: make(chan ActionRequest, 16),
		Replies:  make(chan Action, 16),
	}
}

func (s *ScriptedController) RequestAction(ctx context.Context, req ActionRequest) (Action, error) {
	s.Requests <- req
	select {
	case a := <-s.Replies:
		return a, nil
	case <-ctx.Done():
		return Action{}, ctx.Err()
	}
}
