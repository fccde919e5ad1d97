package game

import "errors"

var (
	ErrSeatOutOfRange  = errors.New("seat out of range")
	ErrSeatTaken       = errors.New("seat taken")
	ErrNoPlayer        = errors.New("no player in seat")
	ErrAlreadySeated   = errors.New("player already seated")
	ErrInHand          = errors.New("player is in the current hand")
	ErrNotEnoughPlayer = errors.New("not enough players to start a hand")
	ErrWrongPhase      = errors.New("transition not valid in current phase")
	ErrEngineStopped   = errors.New("engine stopped")

	// Invariant violations. These indicate a defect and stop the engine.
	ErrPotImbalance     = errors.New("pot imbalance")
	ErrChipConservation = errors.New("chip conservation violated")
	ErrNoEligibleSeat   = errors.New("no eligible seat while round unresolved")
)
