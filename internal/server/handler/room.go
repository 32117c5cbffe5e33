package handler

import (
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol/codec"
	"github.com/palemoky/waterdeep-conspiracy/internal/types"
)

// handleCreateGame opens an empty room. The caller does not join it.
func (h *Handler) handleCreateGame(client types.ClientInterface) {
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeMaintenance))
		return
	}

	created := h.roomManager.CreateRoom()
	client.SendMessage(codec.MustNewMessage(protocol.MsgGameCreated, protocol.GameCreatedPayload{
		Code: created.Code,
	}))
}

// handleJoinGame adds the caller to a room. A successful join leaves any
// other room the caller was in.
func (h *Handler) handleJoinGame(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.JoinGamePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	joined, err := h.roomManager.JoinRoom(client, payload.Code, payload.Name)
	if err != nil {
		replyError(client, err)
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgJoinedGame, protocol.JoinedGamePayload{
		Code: joined.Code,
	}))
}

func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.RoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if rm := h.lookup(client, payload.Code); rm != nil {
		if err := rm.StartGame(); err != nil {
			replyError(client, err)
		}
	}
}

func (h *Handler) handleNextRound(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.RoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if rm := h.lookup(client, payload.Code); rm != nil {
		if err := rm.NextRound(); err != nil {
			replyError(client, err)
		}
	}
}

// handleSkipTimer ends the running writing or voting phase early.
func (h *Handler) handleSkipTimer(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.RoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if rm := h.lookup(client, payload.Code); rm != nil {
		if err := rm.EndPhase(); err != nil {
			replyError(client, err)
		}
	}
}
