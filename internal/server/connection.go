package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/gameid"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	gameService *GameService
	server      *Server

	mu       sync.RWMutex
	playerID string
	name     string
	roomID   string
	agent    *NetworkAgent
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: server.gameService,
		server:      server,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has been closed
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client without blocking. A client
// that cannot keep up is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection", "player", c.GetPlayer())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// GetRoom returns the room the connection is in
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

func (c *Connection) setRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
	c.agent = nil
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	if msg.Type != MessageTypeAuth && c.GetPlayer() == "" {
		c.sendError(msg, "not_authenticated", ErrNotAuthenticated)
		return
	}

	var err error
	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err = decode(msg, &data); err == nil {
			err = c.handleAuth(msg, data)
		}
	case MessageTypeListRooms:
		c.reply(msg, MessageTypeRoomList, RoomListData{Rooms: c.gameService.ListRooms()})
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err = decode(msg, &data); err == nil {
			err = c.handleCreateRoom(msg, data)
		}
	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err = decode(msg, &data); err == nil {
			err = c.handleJoinRoom(msg, data)
		}
	case MessageTypeLeaveRoom:
		err = c.handleLeaveRoom(msg)
	case MessageTypeJoinTable:
		var data JoinTableData
		if err = decode(msg, &data); err == nil {
			err = c.handleJoinTable(data)
		}
	case MessageTypeLeaveTable:
		err = c.withRoom(func(room *Room) error {
			return room.Engine.LeavePlayer(c.ctx, c.GetPlayer())
		})
	case MessageTypeChangeSeat:
		var data ChangeSeatData
		if err = decode(msg, &data); err == nil {
			err = c.handleChangeSeat(data.Seat)
		}
	case MessageTypeRename:
		var data RenameData
		if err = decode(msg, &data); err == nil {
			err = c.handleRename(data)
		}
	case MessageTypeStart:
		err = c.withRoom(func(room *Room) error { return room.Engine.Start(c.ctx) })
	case MessageTypePause:
		err = c.withRoom(func(room *Room) error { return room.Engine.Pause(c.ctx) })
	case MessageTypePlayerDecision:
		var data PlayerDecisionData
		if decode(msg, &data) != nil {
			data = PlayerDecisionData{} // unreadable decisions fold
		}
		err = c.handlePlayerDecision(data)
	case MessageTypeAddBot:
		var data AddBotData
		if err = decode(msg, &data); err == nil {
			err = c.handleAddBot(data)
		}
	default:
		c.sendError(msg, "unknown_message_type", errors.New("unknown message type: "+msg.Type.String()))
		return
	}

	if err != nil {
		c.sendError(msg, errorCode(err), err)
	}
}

type invalidMessageError struct{ err error }

func (e invalidMessageError) Error() string { return "invalid message: " + e.err.Error() }
func (e invalidMessageError) Unwrap() error { return e.err }

func decode(msg *Message, v any) error {
	if len(msg.Data) == 0 {
		return invalidMessageError{errors.New("missing data")}
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		return invalidMessageError{err}
	}
	return nil
}

// errorCode maps an error to the code sent to clients
func errorCode(err error) string {
	var invalid invalidMessageError
	switch {
	case errors.As(err, &invalid):
		return "invalid_message"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrBadPasscode):
		return "bad_passcode"
	case errors.Is(err, ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, ErrNotSeated), errors.Is(err, game.ErrNoPlayer):
		return "not_seated"
	case errors.Is(err, game.ErrSeatTaken), errors.Is(err, game.ErrSeatOutOfRange),
		errors.Is(err, game.ErrAlreadySeated), errors.Is(err, game.ErrInHand), errors.Is(err, ErrTableFull):
		return "seat_unavailable"
	case errors.Is(err, ErrNoPendingDecision):
		return "no_pending_decision"
	default:
		return "request_failed"
	}
}

// reply sends a response, echoing the request id of msg
func (c *Connection) reply(msg *Message, typ MessageType, data any) {
	response, err := NewMessage(typ, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", typ, "error", err)
		return
	}
	response.RequestID = msg.RequestID
	_ = c.SendMessage(response)
}

// sendError sends an error message to the client
func (c *Connection) sendError(msg *Message, code string, err error) {
	c.logger.Debug("Request failed", "type", msg.Type, "code", code, "error", err)
	c.reply(msg, MessageTypeError, ErrorData{Code: code, Message: err.Error()})
}

func (c *Connection) withRoom(fn func(room *Room) error) error {
	roomID := c.GetRoom()
	if roomID == "" {
		return ErrNotInRoom
	}
	room, err := c.gameService.Room(roomID)
	if err != nil {
		return err
	}
	return fn(room)
}

func (c *Connection) handleAuth(msg *Message, data AuthData) error {
	name := sanitizeName(data.PlayerName)
	if name == "" {
		c.reply(msg, MessageTypeAuthResponse, AuthResponseData{Error: "player name required"})
		return nil
	}

	c.mu.Lock()
	if c.playerID == "" {
		c.playerID = gameid.Generate()
	}
	c.name = name
	playerID := c.playerID
	c.mu.Unlock()

	c.logger.Info("Authenticated", "player", playerID, "name", name)
	c.reply(msg, MessageTypeAuthResponse, AuthResponseData{Success: true, PlayerID: playerID})
	return nil
}

// leaveCurrentRoom leaves the room the connection is in, if any
func (c *Connection) leaveCurrentRoom() error {
	roomID := c.GetRoom()
	if roomID == "" {
		return nil
	}
	c.setRoom("")
	err := c.gameService.LeaveRoom(c.ctx, roomID, c.GetPlayer())
	if errors.Is(err, ErrRoomNotFound) {
		return nil
	}
	return err
}

func (c *Connection) handleCreateRoom(msg *Message, data CreateRoomData) error {
	if err := c.leaveCurrentRoom(); err != nil {
		return err
	}
	room, err := c.gameService.CreateRoom(RoomOptions{
		Name:     data.Name,
		Passcode: data.Passcode,
		MaxSeats: data.MaxSeats,
		Blind:    data.Blind,
	}, c.GetPlayer())
	if err != nil {
		return err
	}
	c.setRoom(room.ID)
	c.reply(msg, MessageTypeRoomCreated, room.Info())
	return nil
}

func (c *Connection) handleJoinRoom(msg *Message, data JoinRoomData) error {
	if _, err := c.gameService.Authorize(data.RoomID, data.Passcode); err != nil {
		return err
	}
	if c.GetRoom() != data.RoomID {
		if err := c.leaveCurrentRoom(); err != nil {
			return err
		}
	}
	room, err := c.gameService.JoinRoom(data.RoomID, data.Passcode, c.GetPlayer())
	if err != nil {
		return err
	}
	c.setRoom(room.ID)

	snap, err := room.Engine.Snapshot(c.ctx)
	if err != nil {
		return err
	}
	c.reply(msg, MessageTypeRoomJoined, RoomJoinedData{Room: room.Info(), Table: snap})
	return nil
}

func (c *Connection) handleLeaveRoom(msg *Message) error {
	roomID := c.GetRoom()
	if roomID == "" {
		return ErrNotInRoom
	}
	if err := c.leaveCurrentRoom(); err != nil {
		return err
	}
	c.reply(msg, MessageTypeRoomLeft, RoomLeftData{RoomID: roomID})
	return nil
}

// seatOf returns the seat held by this connection's player
func (c *Connection) seatOf(room *Room) (int, error) {
	snap, err := room.Engine.Snapshot(c.ctx)
	if err != nil {
		return game.NoSeat, err
	}
	playerID := c.GetPlayer()
	for _, v := range snap.Seats {
		if v != nil && v.PlayerID == playerID && v.Seated {
			return v.Seat, nil
		}
	}
	return game.NoSeat, ErrNotSeated
}

// handleJoinTable sits the player down, or moves them if already seated
func (c *Connection) handleJoinTable(data JoinTableData) error {
	return c.withRoom(func(room *Room) error {
		if _, err := c.seatOf(room); err == nil {
			return c.handleChangeSeat(data.Seat)
		}

		c.mu.RLock()
		agent := c.agent
		identity := game.Identity{ID: c.playerID, Name: c.name}
		c.mu.RUnlock()
		if agent == nil {
			agent = NewNetworkAgent(identity.ID, room.ID, c.server, c.server.clock, c.logger)
		}
		identity.Controller = agent

		if err := room.Engine.Join(c.ctx, identity, data.Seat); err != nil {
			return err
		}
		c.mu.Lock()
		c.agent = agent
		c.mu.Unlock()
		return nil
	})
}

func (c *Connection) handleChangeSeat(to int) error {
	return c.withRoom(func(room *Room) error {
		from, err := c.seatOf(room)
		if err != nil {
			return err
		}
		return room.Engine.ChangeSeat(c.ctx, from, to)
	})
}

func (c *Connection) handleRename(data RenameData) error {
	name := sanitizeName(data.Name)
	if name == "" {
		return invalidMessageError{errors.New("name required")}
	}
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()

	if c.GetRoom() == "" {
		return nil
	}
	return c.withRoom(func(room *Room) error {
		seat, err := c.seatOf(room)
		if errors.Is(err, ErrNotSeated) {
			return nil
		}
		if err != nil {
			return err
		}
		return room.Engine.Rename(c.ctx, seat, name)
	})
}

func (c *Connection) handlePlayerDecision(data PlayerDecisionData) error {
	c.mu.RLock()
	agent := c.agent
	c.mu.RUnlock()
	if agent == nil {
		return ErrNotSeated
	}
	return agent.HandleDecision(data)
}

func (c *Connection) handleAddBot(data AddBotData) error {
	return c.withRoom(func(room *Room) error {
		seat := game.NoSeat
		if data.Seat != nil {
			seat = *data.Seat
		}
		_, err := c.gameService.AddBot(c.ctx, room.ID, data.Strategy, seat)
		return err
	})
}
