package protocol

// Error codes. They are logged server-side; clients only ever see the text.
const (
	ErrCodeUnknown     = 1000
	ErrCodeInvalidMsg  = 1001
	ErrCodeRateLimit   = 1002
	ErrCodeMaintenance = 1003

	ErrCodeGameNotFound     = 2001
	ErrCodeNameRequired     = 2002
	ErrCodeNameTooLong      = 2003
	ErrCodeNameTaken        = 2004
	ErrCodeAlreadyJoined    = 2005
	ErrCodeNotInGame        = 2006
	ErrCodeGameStarted      = 2007
	ErrCodeNotEnoughPlayers = 2008

	ErrCodeWrongPhase   = 3001
	ErrCodeNotWriting   = 3002
	ErrCodeNotVoting    = 3003
	ErrCodeSelfVote     = 3004
	ErrCodeInvalidVote  = 3005
	ErrCodeRoundNotOver = 3006
)

// ErrorMessages is the text sent for codes that have no richer context.
var ErrorMessages = map[int]string{
	ErrCodeUnknown:     "Something went wrong",
	ErrCodeInvalidMsg:  "Invalid message",
	ErrCodeRateLimit:   "Too many messages, slow down",
	ErrCodeMaintenance: "Server is shutting down, no new games",
}
