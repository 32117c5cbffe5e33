package room

import "slices"

// Phase is the stage of a room's round lifecycle.
type Phase string

const (
	PhaseLobby   Phase = "lobby"   // waiting for players, no timer
	PhaseWriting Phase = "writing" // players answer the prompt
	PhaseVoting  Phase = "voting"  // players vote on anonymized answers
	PhaseResults Phase = "results" // tallies shown, waiting for nextRound
	PhaseFinal   Phase = "final"   // standings shown, terminal
)

var transitions = map[Phase][]Phase{
	PhaseLobby:   {PhaseWriting},
	PhaseWriting: {PhaseVoting},
	PhaseVoting:  {PhaseResults},
	PhaseResults: {PhaseWriting, PhaseFinal},
}

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo reports whether next directly follows p.
func (p Phase) CanTransitionTo(next Phase) bool {
	return slices.Contains(transitions[p], next)
}

// HasTimer reports whether the phase may run a countdown.
func (p Phase) HasTimer() bool {
	return p == PhaseWriting || p == PhaseVoting
}
