package room

import (
	"github.com/rs/zerolog/log"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol/codec"
	"github.com/palemoky/waterdeep-conspiracy/internal/types"
)

// broadcastLocked delivers one event to every player in join order.
// SendMessage must only enqueue; a sender that panics is skipped.
func (r *Room) broadcastLocked(msgType protocol.MessageType, payload any) {
	msg, err := codec.NewMessage(msgType, payload)
	if err != nil {
		log.Error().Err(err).Str("room", r.Code).Str("type", string(msgType)).Msg("broadcast encode failed")
		return
	}

	for _, id := range r.order {
		if p := r.players[id]; p != nil && p.conn != nil {
			deliver(p.conn, msg, r.Code)
		}
	}
}

func deliver(conn types.MessageSender, msg *protocol.Message, roomCode string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Warn().Str("room", roomCode).Interface("panic", rec).Msg("delivery failed")
		}
	}()
	conn.SendMessage(msg)
}

// notifyLocked hands the current summary to the change hook.
func (r *Room) notifyLocked() {
	if r.onChange != nil {
		r.onChange(r.summaryLocked())
	}
}
