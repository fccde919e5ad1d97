package server

import (
	"encoding/json"
	"time"

	"github.com/lox/holdemtable/internal/deck"
	"github.com/lox/holdemtable/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type CreateRoomData struct {
	Name     string     `json:"name"`
	Passcode string     `json:"passcode,omitempty"`
	MaxSeats int        `json:"maxSeats,omitempty"`
	Blind    game.Chips `json:"blind,omitempty"`
}

type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	Passcode string `json:"passcode,omitempty"`
}

type JoinTableData struct {
	Seat int `json:"seat"`
}

type ChangeSeatData struct {
	Seat int `json:"seat"`
}

type RenameData struct {
	Name string `json:"name"`
}

// PlayerDecisionData answers an action_required. Amount is kept raw so a
// malformed value folds the player instead of failing the message.
type PlayerDecisionData struct {
	Action string          `json:"action"`
	Amount json.RawMessage `json:"amount,omitempty"`
}

type AddBotData struct {
	Strategy string `json:"strategy"`
	Seat     *int   `json:"seat,omitempty"` // first empty seat when omitted
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomInfo describes a room in listings
type RoomInfo struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Host     string     `json:"host"`
	Locked   bool       `json:"locked"` // a passcode is required
	Members  int        `json:"members"`
	MaxSeats int        `json:"maxSeats"`
	Blind    game.Chips `json:"blind"`
	Created  time.Time  `json:"created"`
}

type RoomListData struct {
	Rooms []RoomInfo `json:"rooms"`
}

type RoomJoinedData struct {
	Room  RoomInfo      `json:"room"`
	Table game.Snapshot `json:"table"`
}

type RoomLeftData struct {
	RoomID string `json:"roomId"`
}

type HostData struct {
	RoomID string `json:"roomId"`
}

type TableStateData struct {
	RoomID string `json:"roomId"`
	game.Snapshot
}

type HoleCardsData struct {
	RoomID string      `json:"roomId"`
	Seat   int         `json:"seat"`
	Cards  []deck.Card `json:"cards"`
}

type ActionRequiredData struct {
	RoomID         string             `json:"roomId"`
	Request        game.ActionRequest `json:"request"`
	TimeoutSeconds int                `json:"timeoutSeconds"`
}
