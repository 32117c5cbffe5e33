package model

import (
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/ui/view"
)

// GameState is what the client knows about the room it joined.
type GameState struct {
	Code    string
	Players []protocol.PlayerInfo

	Round     int
	Prompt    string
	TimeLeft  int
	Submitted bool
	Progress  view.Progress

	Ballot      []protocol.BallotEntry
	pendingVote string
	VotedFor    string

	Results     []protocol.RoundResult
	IsLastRound bool
	Standings   []protocol.PlayerInfo
}

// Reset forgets everything about the current room.
func (g *GameState) Reset() {
	*g = GameState{}
}

func (g *GameState) startRound(p *protocol.RoundStartPayload) {
	g.Round = p.Round
	g.Prompt = p.Prompt
	g.TimeLeft = p.TimeLeft
	g.Submitted = false
	g.Progress = view.Progress{}
	g.Ballot = nil
	g.pendingVote = ""
	g.VotedFor = ""
	g.Results = nil
	g.IsLastRound = false
}

func (g *GameState) startVoting(p *protocol.VotingPhasePayload) {
	g.Ballot = p.Submissions
	g.TimeLeft = 0
	g.Progress = view.Progress{}
	g.pendingVote = ""
	g.VotedFor = ""
}

// ballotEntry returns the 1-based choice n, or false when out of range.
func (g *GameState) ballotEntry(n int) (protocol.BallotEntry, bool) {
	if n < 1 || n > len(g.Ballot) {
		return protocol.BallotEntry{}, false
	}
	return g.Ballot[n-1], true
}
