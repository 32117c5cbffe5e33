package room

import (
	"time"

	"github.com/palemoky/waterdeep-conspiracy/internal/server/storage"
)

// Snapshot returns the directory view of the room.
func (r *Room) Snapshot() *storage.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryLocked()
}

func (r *Room) summaryLocked() *storage.RoomSummary {
	return &storage.RoomSummary{
		Code:      r.Code,
		Phase:     r.phase.String(),
		Round:     r.round,
		MaxRounds: r.settings.MaxRounds,
		Players:   len(r.players),
		CreatedAt: r.CreatedAt.Unix(),
		UpdatedAt: time.Now().Unix(),
	}
}
