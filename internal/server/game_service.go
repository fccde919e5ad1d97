package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/gameid"
	"golang.org/x/sync/errgroup"
)

// Broadcaster delivers messages to the members of a room and to single
// players
type Broadcaster interface {
	Sender
	BroadcastToRoom(roomID string, msg *Message)
}

// RoomOptions describes a new room. Zero values take the table defaults.
type RoomOptions struct {
	Name     string
	Passcode string
	MaxSeats int
	Blind    game.Chips
	BuyIn    game.Chips

	// Persistent rooms stay open when the last member leaves
	Persistent bool
}

// Room is a named table with its engine and the players watching it
type Room struct {
	ID       string
	Name     string
	MaxSeats int
	Blind    game.Chips
	Created  time.Time
	Engine   *game.Engine

	passcode   string
	persistent bool
	cancel     context.CancelFunc

	mu      sync.Mutex
	host    string
	members []string // player ids in joining order
	bots    int
}

// Info returns the listing view of the room
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{
		ID:       r.ID,
		Name:     r.Name,
		Host:     r.host,
		Locked:   r.passcode != "",
		Members:  len(r.members),
		MaxSeats: r.MaxSeats,
		Blind:    r.Blind,
		Created:  r.Created,
	}
}

// Host returns the id of the player hosting the room
func (r *Room) Host() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

// Members returns the ids of the players in the room
func (r *Room) Members() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.members)
}

func (r *Room) addMember(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.members, playerID) {
		r.members = append(r.members, playerID)
	}
	if r.host == "" {
		r.host = playerID
	}
}

// removeMember drops playerID and hands the room to the longest standing
// member if the host left. It returns the new host, if any, and whether the
// room is now empty.
func (r *Room) removeMember(playerID string) (newHost string, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = slices.DeleteFunc(r.members, func(id string) bool { return id == playerID })
	if len(r.members) == 0 {
		r.host = ""
		return "", true
	}
	if r.host == playerID {
		r.host = r.members[0]
		return r.host, false
	}
	return "", false
}

// GameService owns the rooms of a server. Every room's engine runs in the
// service's errgroup until the room is destroyed or the service shuts down.
type GameService struct {
	engineCfg game.EngineConfig
	out       Broadcaster
	clock     quartz.Clock
	logger    *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewGameService creates a new game service. Engines stop when ctx is
// cancelled or Shutdown is called.
func NewGameService(ctx context.Context, engineCfg game.EngineConfig, out Broadcaster, clock quartz.Clock, logger *log.Logger) *GameService {
	ctx, cancel := context.WithCancel(ctx)
	return &GameService{
		engineCfg: engineCfg,
		out:       out,
		clock:     clock,
		logger:    logger.WithPrefix("game-service"),
		ctx:       ctx,
		cancel:    cancel,
		rooms:     make(map[string]*Room),
	}
}

// CreateRoom creates a room hosted by host and starts its engine. The
// engine stays paused until started.
func (gs *GameService) CreateRoom(opts RoomOptions, host string) (*Room, error) {
	name := sanitizeName(opts.Name)
	if name == "" {
		return nil, fmt.Errorf("room name required: %w", ErrInvalidRoom)
	}
	if opts.MaxSeats != 0 && (opts.MaxSeats < 2 || opts.MaxSeats > 10) {
		return nil, fmt.Errorf("max seats %d: %w", opts.MaxSeats, ErrInvalidRoom)
	}
	if opts.Blind < 0 || opts.BuyIn < 0 {
		return nil, fmt.Errorf("negative stakes: %w", ErrInvalidRoom)
	}
	if gs.ctx.Err() != nil {
		return nil, ErrServiceStopped
	}

	id := gameid.Generate()
	created, _ := gameid.Time(id)
	table := game.NewTable(rand.New(rand.NewSource(time.Now().UnixNano())), game.TableConfig{
		MaxSeats: opts.MaxSeats,
		Blind:    opts.Blind,
		BuyIn:    opts.BuyIn,
	})
	cfg := table.Config()
	logger := gs.logger.With("room", id)

	ctx, cancel := context.WithCancel(gs.ctx)
	room := &Room{
		ID:         id,
		Name:       name,
		MaxSeats:   cfg.MaxSeats,
		Blind:      cfg.Blind,
		Created:    created,
		passcode:   opts.Passcode,
		persistent: opts.Persistent,
		cancel:     cancel,
	}
	notifier := game.Notifiers{
		&roomNotifier{roomID: id, out: gs.out, logger: logger},
		&resultLogger{logger: logger},
	}
	room.Engine = game.NewEngine(table, gs.engineCfg, gs.clock, notifier, logger)
	if host != "" {
		room.addMember(host)
	}

	gs.mu.Lock()
	gs.rooms[id] = room
	gs.mu.Unlock()

	gs.group.Go(func() error {
		err := room.Engine.Run(ctx)
		if err != nil {
			gs.logger.Error("Room engine failed", "room", id, "error", err)
			gs.forget(id)
		}
		return err
	})

	gs.logger.Info("Created room", "room", id, "name", name, "host", host, "seats", cfg.MaxSeats, "blind", cfg.Blind)
	return room, nil
}

// DestroyRoom stops a room's engine and removes the room
func (gs *GameService) DestroyRoom(id string) error {
	room := gs.forget(id)
	if room == nil {
		return fmt.Errorf("room %s: %w", id, ErrRoomNotFound)
	}
	room.cancel()
	<-room.Engine.Done()
	gs.logger.Info("Destroyed room", "room", id, "name", room.Name)
	return nil
}

func (gs *GameService) forget(id string) *Room {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	room := gs.rooms[id]
	delete(gs.rooms, id)
	return room
}

// Room returns a room by id
func (gs *GameService) Room(id string) (*Room, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	room, ok := gs.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, ErrRoomNotFound)
	}
	return room, nil
}

// ListRooms returns all rooms, oldest first
func (gs *GameService) ListRooms() []RoomInfo {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	rooms := make([]RoomInfo, 0, len(gs.rooms))
	for _, room := range gs.rooms {
		rooms = append(rooms, room.Info())
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

// Authorize checks a passcode against a room
func (gs *GameService) Authorize(id, passcode string) (*Room, error) {
	room, err := gs.Room(id)
	if err != nil {
		return nil, err
	}
	if room.passcode != "" && room.passcode != passcode {
		return nil, fmt.Errorf("room %s: %w", id, ErrBadPasscode)
	}
	return room, nil
}

// JoinRoom adds playerID to the members of a room after checking the
// passcode
func (gs *GameService) JoinRoom(id, passcode, playerID string) (*Room, error) {
	room, err := gs.Authorize(id, passcode)
	if err != nil {
		return nil, err
	}
	room.addMember(playerID)
	gs.logger.Info("Player joined room", "room", id, "player", playerID)
	return room, nil
}

// LeaveRoom removes playerID from a room, vacating their seat. The host
// role passes to the longest standing member and an empty room is
// destroyed.
func (gs *GameService) LeaveRoom(ctx context.Context, id, playerID string) error {
	room, err := gs.Room(id)
	if err != nil {
		return err
	}

	if err := room.Engine.LeavePlayer(ctx, playerID); err != nil && !errors.Is(err, game.ErrNoPlayer) {
		gs.logger.Warn("Failed to vacate seat", "room", id, "player", playerID, "error", err)
	}

	newHost, empty := room.removeMember(playerID)
	gs.logger.Info("Player left room", "room", id, "player", playerID)
	if empty && !room.persistent {
		return gs.DestroyRoom(id)
	}
	if newHost != "" {
		gs.logger.Info("Host changed", "room", id, "host", newHost)
		if msg, err := NewMessage(MessageTypeHost, HostData{RoomID: id}); err == nil {
			_ = gs.out.SendToPlayer(newHost, msg) // the new host may have disconnected too
		}
	}
	return nil
}

// AddBot seats a bot with the given strategy. A negative seat picks the
// first empty one.
func (gs *GameService) AddBot(ctx context.Context, id, strategy string, seat int) (int, error) {
	room, err := gs.Room(id)
	if err != nil {
		return game.NoSeat, err
	}

	controller, err := bot.New(strategy, rand.New(rand.NewSource(time.Now().UnixNano())), gs.logger)
	if err != nil {
		return game.NoSeat, err
	}

	if seat < 0 {
		snap, err := room.Engine.Snapshot(ctx)
		if err != nil {
			return game.NoSeat, err
		}
		seat = slices.Index(snap.Seats, nil)
		if seat < 0 {
			return game.NoSeat, fmt.Errorf("room %s: %w", id, ErrTableFull)
		}
	}

	room.mu.Lock()
	room.bots++
	n := room.bots
	room.mu.Unlock()

	identity := game.Identity{
		ID:         "bot-" + gameid.Generate(),
		Name:       fmt.Sprintf("%s Bot %d", titleCase(strategy), n),
		Controller: controller,
	}
	if err := room.Engine.Join(ctx, identity, seat); err != nil {
		return game.NoSeat, err
	}
	gs.logger.Info("Bot added", "room", id, "bot", identity.Name, "seat", seat)
	return seat, nil
}

// CreateConfiguredRooms creates the rooms listed in the server config,
// seats their bots and starts the ones marked auto_start
func (gs *GameService) CreateConfiguredRooms(ctx context.Context, tables []TableConfig) error {
	for _, t := range tables {
		room, err := gs.CreateRoom(t.Room(), "")
		if err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		for i, strategy := range t.Bots {
			if _, err := gs.AddBot(ctx, room.ID, strategy, i); err != nil {
				return fmt.Errorf("table %s: %w", t.Name, err)
			}
		}
		if t.AutoStart {
			if err := room.Engine.Start(ctx); err != nil {
				return fmt.Errorf("table %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

// Shutdown stops every engine and waits for them to return
func (gs *GameService) Shutdown() error {
	gs.cancel()
	return gs.group.Wait()
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9 -]`)

// sanitizeName keeps letters, digits, spaces and hyphens
func sanitizeName(name string) string {
	return strings.TrimSpace(unsafeName.ReplaceAllString(name, ""))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
