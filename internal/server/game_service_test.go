package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/holdemtable/internal/bot"
	"github.com/lox/holdemtable/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGameService(t *testing.T) (*GameService, *fakeBroadcaster) {
	t.Helper()
	out := newFakeBroadcaster()
	gs := NewGameService(context.Background(), game.EngineConfig{ActionTimeout: 10 * time.Second}, out, quartz.NewMock(t), testLogger())
	t.Cleanup(func() { _ = gs.Shutdown() })
	return gs, out
}

func TestCreateRoomValidation(t *testing.T) {
	t.Parallel()

	gs, _ := newTestGameService(t)

	tests := []struct {
		name string
		opts RoomOptions
	}{
		{"empty name", RoomOptions{Name: "  "}},
		{"only symbols", RoomOptions{Name: "<>!!"}},
		{"one seat", RoomOptions{Name: "tiny", MaxSeats: 1}},
		{"eleven seats", RoomOptions{Name: "huge", MaxSeats: 11}},
		{"negative blind", RoomOptions{Name: "odd", Blind: -1}},
	}
	for _, tt := range tests {
		_, err := gs.CreateRoom(tt.opts, "alice")
		assert.ErrorIs(t, err, ErrInvalidRoom, tt.name)
	}
	assert.Empty(t, gs.ListRooms())
}

func TestCreateAndListRooms(t *testing.T) {
	t.Parallel()

	gs, _ := newTestGameService(t)

	open, err := gs.CreateRoom(RoomOptions{Name: "Friday <Night>!"}, "alice")
	require.NoError(t, err)
	locked, err := gs.CreateRoom(RoomOptions{Name: "private", Passcode: "hunter2", MaxSeats: 6, Blind: 5}, "bob")
	require.NoError(t, err)

	rooms := gs.ListRooms()
	require.Len(t, rooms, 2)
	assert.Equal(t, open.ID, rooms[0].ID, "rooms are listed oldest first")

	info := open.Info()
	assert.Equal(t, "Friday Night", info.Name)
	assert.Equal(t, "alice", info.Host)
	assert.False(t, info.Locked)
	assert.Equal(t, 1, info.Members)
	assert.Equal(t, 4, info.MaxSeats)
	assert.Equal(t, game.Chips(1), info.Blind)
	assert.WithinDuration(t, time.Now(), info.Created, time.Minute)

	info = locked.Info()
	assert.True(t, info.Locked)
	assert.Equal(t, 6, info.MaxSeats)
	assert.Equal(t, game.Chips(5), info.Blind)

	snap, err := locked.Engine.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Paused, "new rooms wait to be started")
	assert.Len(t, snap.Seats, 6)
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	gs, _ := newTestGameService(t)
	room, err := gs.CreateRoom(RoomOptions{Name: "private", Passcode: "hunter2"}, "alice")
	require.NoError(t, err)

	_, err = gs.Authorize(room.ID, "guess")
	assert.ErrorIs(t, err, ErrBadPasscode)

	_, err = gs.Authorize("nope", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = gs.JoinRoom(room.ID, "", "bob")
	assert.ErrorIs(t, err, ErrBadPasscode)

	joined, err := gs.JoinRoom(room.ID, "hunter2", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, joined.Members())
}

func TestLeaveRoomHandsOverHost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gs, out := newTestGameService(t)
	room, err := gs.CreateRoom(RoomOptions{Name: "home"}, "alice")
	require.NoError(t, err)
	_, err = gs.JoinRoom(room.ID, "", "bob")
	require.NoError(t, err)
	_, err = gs.JoinRoom(room.ID, "", "carol")
	require.NoError(t, err)
	require.NoError(t, room.Engine.Join(ctx, game.Identity{ID: "alice", Name: "alice"}, 0))

	require.NoError(t, gs.LeaveRoom(ctx, room.ID, "alice"))
	assert.Equal(t, "bob", room.Host())
	require.Len(t, out.sent("bob", MessageTypeHost), 1)
	assert.Equal(t, room.ID, decodeData[HostData](t, out.sent("bob", MessageTypeHost)[0]).RoomID)

	snap, err := room.Engine.Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.Seat(0), "leaving the room vacates the seat")

	require.NoError(t, gs.LeaveRoom(ctx, room.ID, "carol"))
	assert.Equal(t, "bob", room.Host())

	require.NoError(t, gs.LeaveRoom(ctx, room.ID, "bob"))
	_, err = gs.Room(room.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	select {
	case <-room.Engine.Done():
	default:
		t.Fatal("engine still running after the room was destroyed")
	}

	assert.ErrorIs(t, gs.LeaveRoom(ctx, room.ID, "bob"), ErrRoomNotFound)
	assert.ErrorIs(t, gs.DestroyRoom(room.ID), ErrRoomNotFound)
}

func TestPersistentRoomOutlivesMembers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gs, _ := newTestGameService(t)
	room, err := gs.CreateRoom(RoomOptions{Name: "lobby", Persistent: true}, "")
	require.NoError(t, err)
	assert.Empty(t, room.Host())

	_, err = gs.JoinRoom(room.ID, "", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", room.Host())

	require.NoError(t, gs.LeaveRoom(ctx, room.ID, "alice"))
	_, err = gs.Room(room.ID)
	require.NoError(t, err)
	assert.Empty(t, room.Host())
}

func TestAddBot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gs, _ := newTestGameService(t)
	room, err := gs.CreateRoom(RoomOptions{Name: "bots", MaxSeats: 3}, "alice")
	require.NoError(t, err)

	seat, err := gs.AddBot(ctx, room.ID, "call", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, seat)

	seat, err = gs.AddBot(ctx, room.ID, "tag", -1)
	require.NoError(t, err)
	assert.Equal(t, 0, seat)

	_, err = gs.AddBot(ctx, room.ID, "call", 0)
	assert.ErrorIs(t, err, game.ErrSeatTaken)

	_, err = gs.AddBot(ctx, room.ID, "shark", -1)
	assert.ErrorIs(t, err, bot.ErrUnknownStrategy)

	_, err = gs.AddBot(ctx, "missing", "call", -1)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = gs.AddBot(ctx, room.ID, "fold", -1)
	require.NoError(t, err)
	_, err = gs.AddBot(ctx, room.ID, "fold", -1)
	assert.ErrorIs(t, err, ErrTableFull)

	snap, err := room.Engine.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Call Bot 1", snap.Seat(2).Name)
	assert.Equal(t, "Tag Bot 2", snap.Seat(0).Name)
	assert.Equal(t, "Fold Bot 4", snap.Seat(1).Name)
	assert.Contains(t, snap.Seat(2).PlayerID, "bot-")
}

func TestCreateConfiguredRooms(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gs, out := newTestGameService(t)

	cfg := DefaultServerConfig()
	cfg.Tables = append(cfg.Tables, TableConfig{Name: "bots", Bots: []string{"call", "fold"}, AutoStart: true})
	cfg.applyDefaults()
	require.NoError(t, cfg.Validate())
	require.NoError(t, gs.CreateConfiguredRooms(ctx, cfg.Tables))

	rooms := gs.ListRooms()
	require.Len(t, rooms, 2)

	var botRoom *Room
	for _, info := range rooms {
		room, err := gs.Room(info.ID)
		require.NoError(t, err)
		if room.Name == "bots" {
			botRoom = room
		}
	}
	require.NotNil(t, botRoom)

	require.Eventually(t, func() bool {
		for _, msg := range out.broadcasts(botRoom.ID) {
			var state TableStateData
			if err := decodeJSON(msg, &state); err == nil && state.LastResult != nil {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond, "bots finish a hand")

	require.NoError(t, gs.Shutdown())
	_, err := gs.CreateRoom(RoomOptions{Name: "late"}, "alice")
	assert.ErrorIs(t, err, ErrServiceStopped)
}
