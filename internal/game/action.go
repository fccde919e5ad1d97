package game

import (
	"fmt"
	"strings"
)

// ActionKind is the kind of decision a player makes
type ActionKind int

const (
	Check ActionKind = iota
	Fold
	Call
	Raise
)

// String returns the wire name of the action kind
func (k ActionKind) String() string {
	switch k {
	case Check:
		return "check"
	case Fold:
		return "fold"
	case Call:
		return "call"
	case Raise:
		return "raise"
	default:
		return "unknown"
	}
}

// ParseActionKind parses a wire action name
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "check":
		return Check, nil
	case "fold":
		return Fold, nil
	case "call":
		return Call, nil
	case "raise", "bet":
		return Raise, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Action is a decision with an optional numeric payload. For a raise,
// Amount is the number of chips the player adds with this action.
type Action struct {
	Kind      ActionKind
	Amount    Chips
	HasAmount bool
}

// NewRaise creates a raise committing amount chips
func NewRaise(amount Chips) Action {
	return Action{Kind: Raise, Amount: amount, HasAmount: true}
}

func (a Action) String() string {
	if a.Kind == Raise && a.HasAmount {
		return fmt.Sprintf("raise %d", a.Amount)
	}
	return a.Kind.String()
}

// ActionResult records how an action was applied. Kind is the effective
// action after reinterpretation and Amount the chips actually committed.
type ActionResult struct {
	Seat      int
	PlayerID  string
	Requested Action
	Kind      ActionKind
	Amount    Chips
	AllIn     bool
}

// Reinterpreted reports whether the requested action was replaced
func (r ActionResult) Reinterpreted() bool {
	return r.Requested.Kind != r.Kind
}
