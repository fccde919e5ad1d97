package game

import (
	"fmt"
	"math/rand"

	"github.com/lox/holdemtable/internal/deck"
)

// Phase is a stage of a hand
type Phase int

const (
	PreHand Phase = iota
	PreFlop
	Flop
	Turn
	River
	Showdown
	PostHand
)

func (p Phase) String() string {
	switch p {
	case PreHand:
		return "prehand"
	case PreFlop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	case PostHand:
		return "posthand"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for q := PreHand; q <= PostHand; q++ {
		if q.String() == string(text) {
			*p = q
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Betting reports whether the phase has a betting round
func (p Phase) Betting() bool {
	return p >= PreFlop && p <= River
}

// BuyInBlinds is the default buy-in as a multiple of the blind unit
const BuyInBlinds = 200

// TableConfig holds table limits
type TableConfig struct {
	MaxSeats int
	Blind    Chips // small blind; the big blind is twice this
	BuyIn    Chips // starting stack for joining players
}

func (c TableConfig) withDefaults() TableConfig {
	if c.MaxSeats <= 0 {
		c.MaxSeats = 4
	}
	if c.Blind <= 0 {
		c.Blind = 1
	}
	if c.BuyIn <= 0 {
		c.BuyIn = c.Blind * BuyInBlinds
	}
	return c
}

// Table holds the state of one poker table across hands
type Table struct {
	cfg   TableConfig
	seats []*Player
	deck  *deck.Deck
	board []deck.Card

	phase      Phase
	inProgress bool
	handNum    int

	pot       Chips // swept from earlier streets
	streetPot Chips // sum of current street contributions
	toMatch   Chips
	minRaise  Chips

	button     int
	smallBlind int
	bigBlind   int
	turn       int

	lastResult *HandResult
}

// NewTable creates an empty table
func NewTable(rng *rand.Rand, cfg TableConfig) *Table {
	cfg = cfg.withDefaults()
	return &Table{
		cfg:        cfg,
		seats:      make([]*Player, cfg.MaxSeats),
		deck:       deck.NewDeck(rng),
		phase:      PreHand,
		minRaise:   2 * cfg.Blind,
		button:     NoSeat,
		smallBlind: NoSeat,
		bigBlind:   NoSeat,
		turn:       NoSeat,
	}
}

// Config returns the table configuration with defaults applied
func (t *Table) Config() TableConfig { return t.cfg }

// Phase returns the current phase
func (t *Table) Phase() Phase { return t.phase }

// InProgress reports whether a hand has started and not yet finished
func (t *Table) InProgress() bool { return t.inProgress }

// HandNumber returns the number of hands started
func (t *Table) HandNumber() int { return t.handNum }

// Board returns the revealed board cards
func (t *Table) Board() []deck.Card { return append([]deck.Card(nil), t.board...) }

// Pot returns the swept pot
func (t *Table) Pot() Chips { return t.pot }

// StreetPot returns the chips bet on the current street
func (t *Table) StreetPot() Chips { return t.streetPot }

// ToMatch returns the current amount to match
func (t *Table) ToMatch() Chips { return t.toMatch }

// MinRaise returns the current minimum raise increment
func (t *Table) MinRaise() Chips { return t.minRaise }

// Button returns the button seat or NoSeat
func (t *Table) Button() int { return t.button }

// Turn returns the seat whose action is awaited, or NoSeat
func (t *Table) Turn() int { return t.turn }

// LastResult returns the result of the most recent showdown, if any
func (t *Table) LastResult() *HandResult { return t.lastResult }

// Player returns the player in seat, or nil
func (t *Table) Player(seat int) *Player {
	if seat < 0 || seat >= len(t.seats) {
		return nil
	}
	return t.seats[seat]
}

// Players returns the occupied seats in seat order
func (t *Table) Players() []*Player {
	var out []*Player
	for _, p := range t.seats {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// FindPlayer returns the player with the given id, or nil
func (t *Table) FindPlayer(id string) *Player {
	for _, p := range t.seats {
		if p != nil && p.ID == id {
			return p
		}
	}
	return nil
}

// SeatedCount returns the number of seated players with chips
func (t *Table) SeatedCount() int {
	n := 0
	for _, p := range t.seats {
		if p != nil && p.Seated && p.Stack > 0 {
			n++
		}
	}
	return n
}

// InHandCount returns the number of players still contesting the hand
func (t *Table) InHandCount() int {
	n := 0
	for _, p := range t.seats {
		if p != nil && p.InHand {
			n++
		}
	}
	return n
}

// TotalChips returns all chips on the table: stacks plus pots
func (t *Table) TotalChips() Chips {
	total := t.pot + t.streetPot
	for _, p := range t.seats {
		if p != nil {
			total += p.Stack
		}
	}
	return total
}

// Join seats a new player with the configured buy-in
func (t *Table) Join(id, name string, seat int) (*Player, error) {
	if seat < 0 || seat >= len(t.seats) {
		return nil, fmt.Errorf("seat %d: %w", seat, ErrSeatOutOfRange)
	}
	if t.seats[seat] != nil {
		return nil, fmt.Errorf("seat %d: %w", seat, ErrSeatTaken)
	}
	if t.FindPlayer(id) != nil {
		return nil, fmt.Errorf("player %s: %w", id, ErrAlreadySeated)
	}

	p := NewPlayer(id, name, seat, t.cfg.BuyIn)
	t.seats[seat] = p
	return p, nil
}

// Leave removes the player in seat. A player with a stake in the current
// hand is only marked as not seated and is removed when the hand ends.
// It reports whether the player was removed immediately.
func (t *Table) Leave(seat int) (bool, error) {
	p := t.Player(seat)
	if p == nil {
		return false, fmt.Errorf("seat %d: %w", seat, ErrNoPlayer)
	}
	if t.hasStake(p) {
		p.Seated = false
		return false, nil
	}
	t.seats[seat] = nil
	return true, nil
}

// ChangeSeat moves a player who is not in the current hand to an empty seat
func (t *Table) ChangeSeat(from, to int) error {
	p := t.Player(from)
	if p == nil {
		return fmt.Errorf("seat %d: %w", from, ErrNoPlayer)
	}
	if to < 0 || to >= len(t.seats) {
		return fmt.Errorf("seat %d: %w", to, ErrSeatOutOfRange)
	}
	if t.seats[to] != nil {
		return fmt.Errorf("seat %d: %w", to, ErrSeatTaken)
	}
	if t.hasStake(p) {
		return fmt.Errorf("seat %d: %w", from, ErrInHand)
	}
	t.seats[from] = nil
	t.seats[to] = p
	p.Seat = to
	return nil
}

// hasStake reports whether p holds cards or chips in the running hand
func (t *Table) hasStake(p *Player) bool {
	return t.inProgress && (p.InHand || p.TotalBet > 0)
}

// Rename changes the display name of the player in seat
func (t *Table) Rename(seat int, name string) error {
	p := t.Player(seat)
	if p == nil {
		return fmt.Errorf("seat %d: %w", seat, ErrNoPlayer)
	}
	p.Name = name
	return nil
}

// nextSeat walks the seat ring clockwise from (not including) seat and
// returns the first seat whose player satisfies ok. The walk visits every
// seat at most once, so it terminates; NoSeat means no player qualifies.
func (t *Table) nextSeat(seat int, ok func(*Player) bool) int {
	n := len(t.seats)
	if seat < 0 {
		seat = n - 1
	}
	for i := 1; i <= n; i++ {
		s := (seat + i) % n
		if p := t.seats[s]; p != nil && ok(p) {
			return s
		}
	}
	return NoSeat
}

func (t *Table) nextInHand(seat int) int {
	return t.nextSeat(seat, func(p *Player) bool { return p.InHand })
}

// nextActing returns the next seat after seat that can be asked to act
func (t *Table) nextActing(seat int) int {
	return t.nextSeat(seat, (*Player).CanAct)
}

// StartHand performs PREHAND: players who left are removed, seated players
// with chips join the hand and the deck is reshuffled
func (t *Table) StartHand() error {
	if t.inProgress {
		return fmt.Errorf("start hand during %s: %w", t.phase, ErrWrongPhase)
	}

	for i, p := range t.seats {
		if p != nil && !p.Seated {
			t.seats[i] = nil
		}
	}
	if t.SeatedCount() < 2 {
		return ErrNotEnoughPlayer
	}

	for _, p := range t.seats {
		if p == nil {
			continue
		}
		p.resetHand()
		if p.Stack > 0 {
			p.InHand = true
			p.ToAct = true
		}
	}

	t.board = t.board[:0]
	t.pot = 0
	t.streetPot = 0
	t.toMatch = 0
	t.minRaise = 2 * t.cfg.Blind
	t.turn = NoSeat
	t.lastResult = nil
	t.deck.Shuffle()

	t.handNum++
	t.inProgress = true
	t.phase = PreHand
	return nil
}

// DealPreflop moves the button, posts the blinds and deals hole cards
func (t *Table) DealPreflop() error {
	if !t.inProgress || t.phase != PreHand {
		return fmt.Errorf("deal preflop during %s: %w", t.phase, ErrWrongPhase)
	}

	t.button = t.nextInHand(t.button)
	t.smallBlind = t.nextInHand(t.button)
	t.bigBlind = t.nextInHand(t.smallBlind)
	if t.button == t.bigBlind {
		// heads-up: the button posts the small blind
		t.bigBlind = t.smallBlind
		t.smallBlind = t.button
	}

	t.post(t.seats[t.smallBlind], t.cfg.Blind)
	t.post(t.seats[t.bigBlind], 2*t.cfg.Blind)
	t.toMatch = max(t.seats[t.smallBlind].StreetBet, t.seats[t.bigBlind].StreetBet)
	t.minRaise = 2 * t.cfg.Blind

	for _, p := range t.seats {
		if p == nil || !p.InHand {
			continue
		}
		cards, err := t.deck.Draw(2)
		if err != nil {
			return err
		}
		p.Hole = cards
	}

	t.phase = PreFlop
	t.turn = t.nextActing(t.bigBlind)
	return nil
}

// post takes a forced bet clamped to the poster's stack
func (t *Table) post(p *Player, amount Chips) {
	amount = min(amount, p.Stack)
	t.commit(p, amount)
	if p.Stack == 0 {
		p.ToAct = false
	}
}

func (t *Table) commit(p *Player, amount Chips) {
	p.Bet(amount)
	t.streetPot += amount
}

// DealStreet reveals the next street's board cards and opens its betting
// round. When fewer than two players can still bet, the remaining hands
// are turned face up.
func (t *Table) DealStreet() error {
	var next Phase
	var n int
	switch t.phase {
	case PreFlop:
		next, n = Flop, 3
	case Flop:
		next, n = Turn, 1
	case Turn:
		next, n = River, 1
	default:
		return fmt.Errorf("deal street during %s: %w", t.phase, ErrWrongPhase)
	}
	if t.streetPot != 0 {
		return fmt.Errorf("deal %s with unswept street bets: %w", next, ErrWrongPhase)
	}

	cards, err := t.deck.Draw(n)
	if err != nil {
		return err
	}
	t.board = append(t.board, cards...)
	t.phase = next
	if !t.NeedsAction() {
		// all-in run-out: nobody is asked to act
		t.turn = NoSeat
		if t.InHandCount() > 1 {
			t.reveal()
		}
		return nil
	}
	t.turn = t.nextActing(t.button)
	return nil
}

// NeedsAction reports whether any player in the hand is flagged to act
func (t *Table) NeedsAction() bool {
	for _, p := range t.seats {
		if p != nil && p.InHand && p.ToAct {
			return true
		}
	}
	return false
}

func (t *Table) reveal() {
	for _, p := range t.seats {
		if p != nil && p.InHand {
			p.Showing = true
		}
	}
}

// EndHand performs POSTHAND: players who left or busted are removed.
// It returns the removed players.
func (t *Table) EndHand() ([]*Player, error) {
	if !t.inProgress || t.phase != Showdown {
		return nil, fmt.Errorf("end hand during %s: %w", t.phase, ErrWrongPhase)
	}

	var removed []*Player
	for i, p := range t.seats {
		if p == nil {
			continue
		}
		p.InHand = false
		p.ToAct = false
		if p.Stack == 0 {
			p.Seated = false
		}
		if !p.Seated {
			removed = append(removed, p)
			t.seats[i] = nil
		}
	}

	t.turn = NoSeat
	t.inProgress = false
	t.phase = PostHand
	return removed, nil
}
