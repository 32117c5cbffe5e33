package apperrors

import (
	"fmt"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
)

// GameError is a rejected player action. The gateway sends Message back to the
// caller and nothing else happens.
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// DefaultMaxNameLength is the display name limit when none is configured.
const DefaultMaxNameLength = 20

// Predefined errors
var (
	ErrGameNotFound     = &GameError{Code: protocol.ErrCodeGameNotFound, Message: "Game not found"}
	ErrNameRequired     = &GameError{Code: protocol.ErrCodeNameRequired, Message: "Name is required"}
	ErrNameTooLong      = NameTooLong(DefaultMaxNameLength)
	ErrNameTaken        = &GameError{Code: protocol.ErrCodeNameTaken, Message: "Name already taken in this game"}
	ErrAlreadyJoined    = &GameError{Code: protocol.ErrCodeAlreadyJoined, Message: "You already joined this game"}
	ErrNotInGame        = &GameError{Code: protocol.ErrCodeNotInGame, Message: "You are not in this game"}
	ErrGameStarted      = &GameError{Code: protocol.ErrCodeGameStarted, Message: "Game already started"}
	ErrNotEnoughPlayers = &GameError{Code: protocol.ErrCodeNotEnoughPlayers, Message: "Need at least 1 player to start"}

	ErrWrongPhase   = &GameError{Code: protocol.ErrCodeWrongPhase, Message: "Nothing to skip right now"}
	ErrNotWriting   = &GameError{Code: protocol.ErrCodeNotWriting, Message: "Theories can only be submitted while writing"}
	ErrNotVoting    = &GameError{Code: protocol.ErrCodeNotVoting, Message: "Votes can only be cast while voting"}
	ErrSelfVote     = &GameError{Code: protocol.ErrCodeSelfVote, Message: "You cannot vote for your own theory"}
	ErrInvalidVote  = &GameError{Code: protocol.ErrCodeInvalidVote, Message: "That theory is not on the ballot"}
	ErrRoundNotOver = &GameError{Code: protocol.ErrCodeRoundNotOver, Message: "The round is not over yet"}
)

// NameTooLong reports a display name over max characters.
func NameTooLong(max int) *GameError {
	return &GameError{
		Code:    protocol.ErrCodeNameTooLong,
		Message: fmt.Sprintf("Name too long (max %d characters)", max),
	}
}
