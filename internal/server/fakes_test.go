package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/holdemtable/internal/game"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return game.QuietLogger()
}

// fakeBroadcaster records outgoing messages instead of writing to sockets
type fakeBroadcaster struct {
	mu      sync.Mutex
	direct  map[string][]*Message
	rooms   map[string][]*Message
	offline map[string]bool
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{
		direct:  make(map[string][]*Message),
		rooms:   make(map[string][]*Message),
		offline: make(map[string]bool),
	}
}

func (f *fakeBroadcaster) SendToPlayer(playerID string, msg *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline[playerID] {
		return fmt.Errorf("%s: %w", playerID, ErrPlayerNotConnected)
	}
	f.direct[playerID] = append(f.direct[playerID], msg)
	return nil
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, msg *Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[roomID] = append(f.rooms[roomID], msg)
}

func (f *fakeBroadcaster) setOffline(playerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline[playerID] = true
}

// sent returns the messages of the given type sent to a player
func (f *fakeBroadcaster) sent(playerID string, typ MessageType) []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Message
	for _, m := range f.direct[playerID] {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeBroadcaster) broadcasts(roomID string) []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Message(nil), f.rooms[roomID]...)
}

func decodeJSON(msg *Message, v any) error {
	return json.Unmarshal(msg.Data, v)
}

func decodeData[T any](t *testing.T, msg *Message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))
	return v
}
