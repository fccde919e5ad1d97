package server

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrBadPasscode       = errors.New("incorrect passcode")
	ErrInvalidRoom       = errors.New("invalid room settings")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNotInRoom         = errors.New("not in a room")
	ErrNotSeated         = errors.New("not seated")
	ErrNoPendingDecision = errors.New("no decision pending")
	ErrTableFull         = errors.New("no empty seat")
	ErrServiceStopped    = errors.New("game service stopped")
)
