package protocol

import "encoding/json"

// Message is the envelope carried over the websocket: {"type": ..., "payload": ...}.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType names an event.
type MessageType string

// Client → server
const (
	MsgCreateGame   MessageType = "createGame"
	MsgJoinGame     MessageType = "joinGame"
	MsgStartGame    MessageType = "startGame"
	MsgSubmitTheory MessageType = "submitTheory"
	MsgVote         MessageType = "vote"
	MsgNextRound    MessageType = "nextRound"
	MsgSkipTimer    MessageType = "skipTimer"
)

// Server → client
const (
	MsgConnected MessageType = "connected"

	// Direct replies
	MsgGameCreated     MessageType = "gameCreated"
	MsgJoinedGame      MessageType = "joinedGame"
	MsgTheorySubmitted MessageType = "theorySubmitted"
	MsgVoteRegistered  MessageType = "voteRegistered"

	// Room broadcasts
	MsgPlayersUpdate    MessageType = "playersUpdate"
	MsgRoundStart       MessageType = "roundStart"
	MsgTimerUpdate      MessageType = "timerUpdate"
	MsgSubmissionUpdate MessageType = "submissionUpdate"
	MsgVotingPhase      MessageType = "votingPhase"
	MsgVoteUpdate       MessageType = "voteUpdate"
	MsgResults          MessageType = "results"
	MsgFinalResults     MessageType = "finalResults"

	// The payload of an error message is a plain JSON string.
	MsgError MessageType = "error"
)
