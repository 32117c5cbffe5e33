package client

import (
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol/codec"
)

// CreateGame asks for a new room.
func (c *Client) CreateGame() error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgCreateGame, nil))
}

// JoinGame joins code under name.
func (c *Client) JoinGame(code, name string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgJoinGame, protocol.JoinGamePayload{
		Code: code,
		Name: name,
	}))
}

// StartGame starts the game in code.
func (c *Client) StartGame(code string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgStartGame, protocol.RoomPayload{Code: code}))
}

// SubmitTheory sends an answer for the current prompt.
func (c *Client) SubmitTheory(code, theory string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgSubmitTheory, protocol.SubmitTheoryPayload{
		Code:   code,
		Theory: theory,
	}))
}

// Vote votes for the submission written by authorID.
func (c *Client) Vote(code, authorID string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgVote, protocol.VotePayload{
		Code:       code,
		VotedForID: authorID,
	}))
}

// NextRound moves past the results.
func (c *Client) NextRound(code string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgNextRound, protocol.RoomPayload{Code: code}))
}

// SkipTimer ends the running phase early.
func (c *Client) SkipTimer(code string) error {
	return c.SendMessage(codec.MustNewMessage(protocol.MsgSkipTimer, protocol.RoomPayload{Code: code}))
}
