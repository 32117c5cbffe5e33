package room

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/waterdeep-conspiracy/internal/apperrors"
	"github.com/palemoky/waterdeep-conspiracy/internal/game/prompt"
	"github.com/palemoky/waterdeep-conspiracy/internal/server/storage"
	"github.com/palemoky/waterdeep-conspiracy/internal/types"
)

// RoomStore receives room summaries. Publishing is best effort.
type RoomStore interface {
	PublishRoom(ctx context.Context, summary *storage.RoomSummary) error
	RemoveRoom(ctx context.Context, code string) error
}

// RoomManager owns every live room. Lock order is rm.mu before room.mu;
// room code never takes rm.mu.
type RoomManager struct {
	store       RoomStore
	settings    Settings
	deck        *prompt.Deck
	roomTimeout time.Duration
	rooms       map[string]*Room
	mu          sync.RWMutex

	storeOps   chan storeOp
	done       chan struct{}
	writerDone chan struct{}
	stopOnce   sync.Once
}

// Options configures a RoomManager. Zero values fall back to defaults.
type Options struct {
	Store       RoomStore // nil disables publishing
	Settings    Settings
	Deck        *prompt.Deck
	RoomTimeout time.Duration // how long a room nobody joins survives
}

// NewRoomManager creates an empty registry.
func NewRoomManager(opts Options) *RoomManager {
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}
	if opts.Deck == nil {
		opts.Deck = prompt.Default()
	}
	if opts.RoomTimeout <= 0 {
		opts.RoomTimeout = 10 * time.Minute
	}

	rm := &RoomManager{
		store:       opts.Store,
		settings:    opts.Settings,
		deck:        opts.Deck,
		roomTimeout: opts.RoomTimeout,
		rooms:       make(map[string]*Room),
		storeOps:    make(chan storeOp, storeQueueSize),
		done:        make(chan struct{}),
		writerDone:  make(chan struct{}),
	}
	if rm.store != nil {
		go rm.runStoreWriter()
	} else {
		close(rm.writerDone)
	}
	return rm
}

// CreateRoom registers a new room under a fresh code.
func (rm *RoomManager) CreateRoom() *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	code := rm.generateRoomCode()
	room := newRoom(code, rm.settings, rm.deck, rm.publish)
	rm.rooms[code] = room

	rm.publish(room.Snapshot())
	log.Info().Str("room", code).Int("rooms", len(rm.rooms)).Msg("room created")

	return room
}

// GetRoom finds a live room. Codes are matched case-insensitively.
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[NormalizeCode(code)]
}

// JoinRoom adds client to the room under name and binds the connection to it.
// A client already in another room leaves it only once the new join succeeded,
// so a rejected join changes nothing.
func (rm *RoomManager) JoinRoom(client types.ClientInterface, code, name string) (*Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, exists := rm.rooms[NormalizeCode(code)]
	if !exists {
		return nil, apperrors.ErrGameNotFound
	}

	if err := room.AddPlayer(client.GetID(), name, client); err != nil {
		return nil, err
	}

	if previous := client.GetRoom(); previous != "" && previous != room.Code {
		rm.leaveLocked(client.GetID(), previous)
	}
	client.SetRoom(room.Code)

	return room, nil
}

// LeaveRoom removes client from its room. A room left empty is destroyed.
func (rm *RoomManager) LeaveRoom(client types.ClientInterface) {
	code := client.GetRoom()
	if code == "" {
		return
	}
	client.SetRoom("")

	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.leaveLocked(client.GetID(), code)
}

func (rm *RoomManager) leaveLocked(playerID, code string) {
	room, exists := rm.rooms[code]
	if !exists {
		return
	}

	room.RemovePlayer(playerID)
	if room.IsClosed() {
		rm.deleteLocked(code)
	}
}

// RemoveRoom closes and forgets a room.
func (rm *RoomManager) RemoveRoom(code string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	code = NormalizeCode(code)
	if room, exists := rm.rooms[code]; exists {
		room.Close()
		rm.deleteLocked(code)
	}
}

func (rm *RoomManager) deleteLocked(code string) {
	delete(rm.rooms, code)
	rm.unpublish(code)
	log.Info().Str("room", code).Int("rooms", len(rm.rooms)).Msg("room destroyed")
}

// RoomCount returns the number of live rooms.
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// ActiveGamesCount returns rooms with a game in progress.
func (rm *RoomManager) ActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		switch room.Phase() {
		case PhaseWriting, PhaseVoting, PhaseResults:
			count++
		}
	}
	return count
}

// CloseAll closes every room, for shutdown.
func (rm *RoomManager) CloseAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for code, room := range rm.rooms {
		room.Close()
		rm.deleteLocked(code)
	}
}

// Shutdown closes every room and stops the store writer once the queued
// writes are flushed.
func (rm *RoomManager) Shutdown() {
	rm.CloseAll()
	rm.stopOnce.Do(func() { close(rm.done) })
	<-rm.writerDone
}

// NormalizeCode trims and upper-cases a room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
