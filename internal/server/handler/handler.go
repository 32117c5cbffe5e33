// Package handler dispatches inbound websocket messages to the room layer.
package handler

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/waterdeep-conspiracy/internal/apperrors"
	"github.com/palemoky/waterdeep-conspiracy/internal/game/room"
	"github.com/palemoky/waterdeep-conspiracy/internal/logger"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol/codec"
	"github.com/palemoky/waterdeep-conspiracy/internal/types"
)

// HandlerDeps are the collaborators of a Handler.
type HandlerDeps struct {
	Server      types.ServerInterface
	RoomManager *room.RoomManager
}

// Handler routes messages by type.
type Handler struct {
	server      types.ServerInterface
	roomManager *room.RoomManager
	handlers    map[protocol.MessageType]handlerFunc
}

type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler creates a handler.
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
	}
	h.initHandlers()
	return h
}

func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		protocol.MsgCreateGame: func(c types.ClientInterface, _ *protocol.Message) { h.handleCreateGame(c) },
		protocol.MsgJoinGame:   h.handleJoinGame,
		protocol.MsgStartGame:  h.handleStartGame,
		protocol.MsgNextRound:  h.handleNextRound,
		protocol.MsgSkipTimer:  h.handleSkipTimer,

		protocol.MsgSubmitTheory: h.handleSubmitTheory,
		protocol.MsgVote:         h.handleVote,
	}
}

// Handle dispatches msg. A panic inside a handler is logged and answered
// with a generic error; it never reaches the read pump.
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Error().Str("type", string(msg.Type)).Str("client", client.GetID()).Msg("handler panic")
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
		}
	}()

	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Warn().Str("type", string(msg.Type)).Str("client", client.GetID()).Int("payload_bytes", len(msg.Payload)).Msg("unknown message type")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// HandleDisconnect removes a closed connection from its room.
func (h *Handler) HandleDisconnect(client types.ClientInterface) {
	h.roomManager.LeaveRoom(client)
}

// replyError answers the caller only. Game errors carry their own text.
func replyError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessageWithText(gameErr.Message))
		return
	}
	log.Error().Err(err).Str("client", client.GetID()).Msg("unexpected handler error")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}

// lookup resolves the room a message addresses, replying when it is gone.
func (h *Handler) lookup(client types.ClientInterface, code string) *room.Room {
	rm := h.roomManager.GetRoom(code)
	if rm == nil {
		replyError(client, apperrors.ErrGameNotFound)
	}
	return rm
}
