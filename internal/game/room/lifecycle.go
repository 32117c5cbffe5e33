package room

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/waterdeep-conspiracy/internal/server/storage"
)

const (
	storeTimeout    = 3 * time.Second
	storeQueueSize  = 256
	cleanupInterval = time.Minute
)

// generateRoomCode returns a code no live room uses. Caller holds rm.mu.
// It keeps drawing for as long as it takes.
func (rm *RoomManager) generateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for {
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		if _, exists := rm.rooms[string(code)]; !exists {
			return string(code)
		}
	}
}

// storeOp is one queued directory write. remove is set for deletions.
type storeOp struct {
	summary *storage.RoomSummary
	remove  string
}

// publish queues a summary for the store without blocking the caller.
func (rm *RoomManager) publish(summary *storage.RoomSummary) {
	if summary != nil {
		rm.enqueue(storeOp{summary: summary})
	}
}

func (rm *RoomManager) unpublish(code string) {
	rm.enqueue(storeOp{remove: code})
}

func (rm *RoomManager) enqueue(op storeOp) {
	if rm.store == nil {
		return
	}
	select {
	case <-rm.done:
	case rm.storeOps <- op:
	default:
		log.Warn().Msg("room store queue full, dropping update")
	}
}

// runStoreWriter applies queued writes in order until Shutdown, then drains
// whatever is still queued.
func (rm *RoomManager) runStoreWriter() {
	defer close(rm.writerDone)
	for {
		select {
		case op := <-rm.storeOps:
			rm.applyStoreOp(op)
		case <-rm.done:
			for {
				select {
				case op := <-rm.storeOps:
					rm.applyStoreOp(op)
				default:
					return
				}
			}
		}
	}
}

func (rm *RoomManager) applyStoreOp(op storeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if op.remove != "" {
		if err := rm.store.RemoveRoom(ctx, op.remove); err != nil {
			log.Warn().Err(err).Str("room", op.remove).Msg("remove room summary failed")
		}
		return
	}
	if err := rm.store.PublishRoom(ctx, op.summary); err != nil {
		log.Warn().Err(err).Str("room", op.summary.Code).Msg("publish room summary failed")
	}
}

// RunCleanup evicts rooms that nobody joined within the room timeout until
// ctx is done.
func (rm *RoomManager) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rm.cleanup(now)
		}
	}
}

// cleanup removes abandoned rooms and returns how many it removed.
func (rm *RoomManager) cleanup(now time.Time) int {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	removed := 0
	for code, room := range rm.rooms {
		if room.abandoned(now, rm.roomTimeout) {
			room.Close()
			rm.deleteLocked(code)
			log.Info().Str("room", code).Msg("room expired unjoined")
			removed++
		}
	}
	return removed
}
