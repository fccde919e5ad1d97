package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeAuth           MessageType = "auth"
	MessageTypeListRooms      MessageType = "list_rooms"
	MessageTypeCreateRoom     MessageType = "create_room"
	MessageTypeJoinRoom       MessageType = "join_room"
	MessageTypeLeaveRoom      MessageType = "leave_room"
	MessageTypeJoinTable      MessageType = "join_table"
	MessageTypeLeaveTable     MessageType = "leave_table"
	MessageTypeChangeSeat     MessageType = "change_seat"
	MessageTypeRename         MessageType = "rename"
	MessageTypeStart          MessageType = "start"
	MessageTypePause          MessageType = "pause"
	MessageTypePlayerDecision MessageType = "player_decision"
	MessageTypeAddBot         MessageType = "add_bot"

	// Server to client messages
	MessageTypeAuthResponse   MessageType = "auth_response"
	MessageTypeRoomList       MessageType = "room_list"
	MessageTypeRoomCreated    MessageType = "room_created"
	MessageTypeRoomJoined     MessageType = "room_joined"
	MessageTypeRoomLeft       MessageType = "room_left"
	MessageTypeHost           MessageType = "host"
	MessageTypeTableState     MessageType = "table_state"
	MessageTypeHoleCards      MessageType = "hole_cards"
	MessageTypeActionRequired MessageType = "action_required"
	MessageTypeError          MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
