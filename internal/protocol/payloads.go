package protocol

import (
	"errors"
	"strings"
)

// Validator is implemented by inbound payloads that have required fields.
type Validator interface {
	Validate() error
}

// ErrMissingField is returned by Validate when a required field is absent or blank.
var ErrMissingField = errors.New("missing required field")

func required(fields ...string) error {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return ErrMissingField
		}
	}
	return nil
}

// --- Client requests ---

// JoinGamePayload joins a room under a display name.
type JoinGamePayload struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (p *JoinGamePayload) Validate() error { return required(p.Code) }

// RoomPayload addresses a room: startGame, nextRound and skipTimer.
type RoomPayload struct {
	Code string `json:"code"`
}

func (p *RoomPayload) Validate() error { return required(p.Code) }

// SubmitTheoryPayload carries a player's answer. A blank theory is not an error;
// the gateway drops it silently.
type SubmitTheoryPayload struct {
	Code   string `json:"code"`
	Theory string `json:"theory"`
}

func (p *SubmitTheoryPayload) Validate() error { return required(p.Code) }

// VotePayload names the submission (by its author's id) the caller votes for.
type VotePayload struct {
	Code       string `json:"code"`
	VotedForID string `json:"votedForId"`
}

func (p *VotePayload) Validate() error { return required(p.Code, p.VotedForID) }

// --- Server replies and broadcasts ---

// ConnectedPayload tells a fresh connection its participant id.
type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

// GameCreatedPayload answers createGame.
type GameCreatedPayload struct {
	Code string `json:"code"`
}

// JoinedGamePayload answers a successful joinGame.
type JoinedGamePayload struct {
	Code string `json:"code"`
}

// PlayerInfo is one roster or leaderboard row.
type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PlayersUpdatePayload is the full roster in join order.
type PlayersUpdatePayload struct {
	Players []PlayerInfo `json:"players"`
}

// RoundStartPayload opens a writing phase.
type RoundStartPayload struct {
	Round    int    `json:"round"`
	Prompt   string `json:"prompt"`
	TimeLeft int    `json:"timeLeft"`
}

// TimerUpdatePayload is sent on every countdown tick.
type TimerUpdatePayload struct {
	TimeLeft int `json:"timeLeft"`
}

// SubmissionUpdatePayload reports progress without revealing content.
type SubmissionUpdatePayload struct {
	Submitted int `json:"submitted"`
	Total     int `json:"total"`
}

// BallotEntry is an anonymized submission. ID is what a vote references.
type BallotEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// VotingPhasePayload lists the shuffled submissions.
type VotingPhasePayload struct {
	Submissions []BallotEntry `json:"submissions"`
}

// VoteUpdatePayload reports voting progress.
type VoteUpdatePayload struct {
	Voted int `json:"voted"`
	Total int `json:"total"`
}

// RoundResult is one tallied submission, author revealed.
type RoundResult struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	PlayerName string `json:"playerName"`
	Votes      int    `json:"votes"`
}

// ResultsPayload closes a round.
type ResultsPayload struct {
	Results     []RoundResult `json:"results"`
	IsLastRound bool          `json:"isLastRound"`
}

// FinalResultsPayload holds the standings, highest score first.
type FinalResultsPayload struct {
	Scores []PlayerInfo `json:"scores"`
}
