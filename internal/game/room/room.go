package room

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/waterdeep-conspiracy/internal/apperrors"
	"github.com/palemoky/waterdeep-conspiracy/internal/game/prompt"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/server/storage"
	"github.com/palemoky/waterdeep-conspiracy/internal/types"
)

const (
	roomCodeLength = 4
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Settings are the rules a room is created with.
type Settings struct {
	MaxRounds     int
	PhaseSeconds  int           // writing countdown
	VoteSeconds   int           // voting countdown, 0 means voting waits for everyone or a skip
	MaxNameLength int           // in characters
	TickInterval  time.Duration // one countdown second
}

// DefaultSettings are four rounds with a sixty second writing phase.
func DefaultSettings() Settings {
	return Settings{
		MaxRounds:     4,
		PhaseSeconds:  60,
		VoteSeconds:   0,
		MaxNameLength: apperrors.DefaultMaxNameLength,
		TickInterval:  time.Second,
	}
}

// Player is a participant's identity inside one room. conn is only used for
// delivery and may be swapped without touching identity or score.
type Player struct {
	ID   string
	Name string

	conn types.MessageSender
}

// ballotEntry is a submission as it appears on the voting ballot.
type ballotEntry struct {
	authorID string
	text     string
}

// Room is one game. Every exported method takes mu, and so does every timer
// tick, which serializes all state transitions.
type Room struct {
	Code      string
	CreatedAt time.Time

	settings Settings
	deck     *prompt.Deck
	onChange func(*storage.RoomSummary) // called under mu after phase or roster changes

	phase       Phase
	round       int
	prompt      string
	timeLeft    int
	players     map[string]*Player
	order       []string // player ids in join order
	submissions map[string]string
	votes       map[string]string // voter id -> author id
	scores      map[string]int
	ballot      []ballotEntry
	timer       *phaseTimer
	closed      bool

	mu sync.Mutex
}

func newRoom(code string, settings Settings, deck *prompt.Deck, onChange func(*storage.RoomSummary)) *Room {
	return &Room{
		Code:        code,
		CreatedAt:   time.Now(),
		settings:    settings,
		deck:        deck,
		onChange:    onChange,
		phase:       PhaseLobby,
		round:       1,
		players:     make(map[string]*Player),
		submissions: make(map[string]string),
		votes:       make(map[string]string),
		scores:      make(map[string]int),
	}
}

// AddPlayer admits a participant under name and broadcasts the roster.
func (r *Room) AddPlayer(id, name string, conn types.MessageSender) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return apperrors.ErrGameNotFound
	}
	if strings.TrimSpace(name) == "" {
		return apperrors.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > r.settings.MaxNameLength {
		return apperrors.NameTooLong(r.settings.MaxNameLength)
	}
	if _, exists := r.players[id]; exists {
		return apperrors.ErrAlreadyJoined
	}
	for _, p := range r.players {
		if p.Name == name {
			return apperrors.ErrNameTaken
		}
	}

	r.players[id] = &Player{ID: id, Name: name, conn: conn}
	r.order = append(r.order, id)
	r.scores[id] = 0

	log.Info().Str("room", r.Code).Str("player", name).Int("players", len(r.players)).Msg("player joined")

	r.broadcastRosterLocked()
	r.notifyLocked()
	return nil
}

// RemovePlayer drops a participant together with their score, submission and
// vote, and any votes cast for them. If everyone still present has already
// answered, the current phase ends. The last player leaving closes the room.
// It reports whether the player was present.
func (r *Room) RemovePlayer(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, exists := r.players[id]
	if !exists {
		return false
	}

	delete(r.players, id)
	delete(r.scores, id)
	delete(r.submissions, id)
	delete(r.votes, id)
	for voter, target := range r.votes {
		if target == id {
			delete(r.votes, voter)
		}
	}
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	log.Info().Str("room", r.Code).Str("player", player.Name).Int("players", len(r.players)).Msg("player left")

	if len(r.players) == 0 {
		r.closeLocked()
		return true
	}

	r.broadcastRosterLocked()
	r.notifyLocked()

	switch r.phase {
	case PhaseWriting:
		if len(r.submissions) == len(r.players) {
			r.endPhaseLocked()
		}
	case PhaseVoting:
		if len(r.votes) == len(r.players) {
			r.endPhaseLocked()
		}
	}
	return true
}

// Close cancels the timer and rejects further joins. It is idempotent.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *Room) closeLocked() {
	if r.closed {
		return
	}
	r.stopTimerLocked()
	r.closed = true
	log.Info().Str("room", r.Code).Msg("room closed")
}

// IsClosed reports whether the room has been closed.
func (r *Room) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// abandoned reports whether nobody has joined within timeout.
func (r *Room) abandoned(now time.Time, timeout time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0 && now.Sub(r.CreatedAt) > timeout
}

// --- Read-only views ---

// Phase returns the current phase.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Round returns the 1-based current round.
func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// Prompt returns the current prompt, empty before the first round.
func (r *Room) Prompt() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prompt
}

// TimeLeft returns the seconds remaining on the countdown.
func (r *Room) TimeLeft() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeLeft
}

// PlayerCount returns the number of players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Players returns the roster in join order.
func (r *Room) Players() []protocol.PlayerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

// Score returns a player's score and whether the player is present.
func (r *Room) Score(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	score, ok := r.scores[id]
	return score, ok
}

func (r *Room) rosterLocked() []protocol.PlayerInfo {
	roster := make([]protocol.PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		roster = append(roster, protocol.PlayerInfo{
			ID:    id,
			Name:  r.players[id].Name,
			Score: r.scores[id],
		})
	}
	return roster
}

func (r *Room) broadcastRosterLocked() {
	r.broadcastLocked(protocol.MsgPlayersUpdate, protocol.PlayersUpdatePayload{Players: r.rosterLocked()})
}
