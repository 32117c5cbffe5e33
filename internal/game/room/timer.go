package room

import (
	"sync"
	"time"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
)

// phaseTimer is the countdown of one phase. The room holds the only handle;
// a tick whose handle is no longer r.timer belongs to a finished phase and is
// dropped.
type phaseTimer struct {
	stop chan struct{}
	once sync.Once
}

func (t *phaseTimer) cancel() {
	t.once.Do(func() { close(t.stop) })
}

// startTimerLocked replaces any running countdown with a new one of seconds.
func (r *Room) startTimerLocked(seconds int) {
	r.stopTimerLocked()

	r.timeLeft = seconds
	t := &phaseTimer{stop: make(chan struct{})}
	r.timer = t
	go r.runTimer(t, r.settings.TickInterval)
}

// stopTimerLocked cancels the running countdown. Safe with no timer.
func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.cancel()
		r.timer = nil
	}
}

func (r *Room) runTimer(t *phaseTimer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if !r.tick(t) {
				return
			}
		}
	}
}

// tick advances the countdown by one second and ends the phase at zero.
// It returns false once t is no longer the room's timer.
func (r *Room) tick(t *phaseTimer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.timer != t {
		return false
	}

	r.timeLeft--
	r.broadcastLocked(protocol.MsgTimerUpdate, protocol.TimerUpdatePayload{TimeLeft: r.timeLeft})

	if r.timeLeft <= 0 {
		r.endPhaseLocked()
		return false
	}
	return true
}
