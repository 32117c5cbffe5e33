package handler

import (
	"strings"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol/codec"
	"github.com/palemoky/waterdeep-conspiracy/internal/types"
)

// handleSubmitTheory records the caller's answer. Blank answers are dropped
// without a reply.
func (h *Handler) handleSubmitTheory(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.SubmitTheoryPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	theory := strings.TrimSpace(payload.Theory)
	if theory == "" {
		return
	}

	rm := h.lookup(client, payload.Code)
	if rm == nil {
		return
	}
	if err := rm.SubmitTheory(client.GetID(), theory); err != nil {
		replyError(client, err)
		return
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgTheorySubmitted, nil))
}

func (h *Handler) handleVote(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.VotePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	rm := h.lookup(client, payload.Code)
	if rm == nil {
		return
	}
	if err := rm.Vote(client.GetID(), payload.VotedForID); err != nil {
		replyError(client, err)
		return
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgVoteRegistered, nil))
}
