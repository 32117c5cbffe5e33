package room

import (
	"math/rand/v2"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/waterdeep-conspiracy/internal/apperrors"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
)

// StartGame leaves the lobby and opens round 1.
func (r *Room) StartGame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return apperrors.ErrGameNotFound
	}
	if r.phase != PhaseLobby {
		return apperrors.ErrGameStarted
	}
	if len(r.players) < 1 {
		return apperrors.ErrNotEnoughPlayers
	}

	log.Info().Str("room", r.Code).Int("players", len(r.players)).Msg("game started")
	r.startRoundLocked()
	return nil
}

// startRoundLocked picks a fresh prompt and opens the writing phase.
func (r *Room) startRoundLocked() {
	r.prompt = r.deck.Pick(r.prompt)
	clear(r.submissions)
	clear(r.votes)
	r.ballot = nil
	r.setPhaseLocked(PhaseWriting)
	r.startTimerLocked(r.settings.PhaseSeconds)

	r.broadcastLocked(protocol.MsgRoundStart, protocol.RoundStartPayload{
		Round:    r.round,
		Prompt:   r.prompt,
		TimeLeft: r.timeLeft,
	})
}

// EndPhase forces the current writing or voting phase to finish now.
func (r *Room) EndPhase() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return apperrors.ErrGameNotFound
	}
	if !r.phase.HasTimer() {
		return apperrors.ErrWrongPhase
	}
	r.endPhaseLocked()
	return nil
}

// endPhaseLocked is the single exit from a timed phase, whether reached by
// timeout, by everyone responding, or by a skip.
func (r *Room) endPhaseLocked() {
	r.stopTimerLocked()

	switch r.phase {
	case PhaseWriting:
		r.openVotingLocked()
	case PhaseVoting:
		r.showResultsLocked()
	}
}

func (r *Room) openVotingLocked() {
	ballot := make([]ballotEntry, 0, len(r.submissions))
	for _, id := range r.order {
		if text, ok := r.submissions[id]; ok {
			ballot = append(ballot, ballotEntry{authorID: id, text: text})
		}
	}
	rand.Shuffle(len(ballot), func(i, j int) {
		ballot[i], ballot[j] = ballot[j], ballot[i]
	})
	r.ballot = ballot

	r.setPhaseLocked(PhaseVoting)
	if r.settings.VoteSeconds > 0 {
		r.startTimerLocked(r.settings.VoteSeconds)
	}

	entries := make([]protocol.BallotEntry, len(ballot))
	for i, e := range ballot {
		entries[i] = protocol.BallotEntry{ID: e.authorID, Text: e.text}
	}
	r.broadcastLocked(protocol.MsgVotingPhase, protocol.VotingPhasePayload{Submissions: entries})
}

// SubmitTheory records or replaces a player's answer. When every player has
// answered the voting phase opens immediately.
func (r *Room) SubmitTheory(playerID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return apperrors.ErrGameNotFound
	}
	if r.phase != PhaseWriting {
		return apperrors.ErrNotWriting
	}
	if _, ok := r.players[playerID]; !ok {
		return apperrors.ErrNotInGame
	}

	r.submissions[playerID] = text
	r.broadcastLocked(protocol.MsgSubmissionUpdate, protocol.SubmissionUpdatePayload{
		Submitted: len(r.submissions),
		Total:     len(r.players),
	})

	if len(r.submissions) == len(r.players) {
		r.endPhaseLocked()
	}
	return nil
}

// Vote records or replaces voterID's choice. votedForID is the author id shown
// on the ballot. When every player has voted the results are shown.
func (r *Room) Vote(voterID, votedForID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if voterID == votedForID {
		return apperrors.ErrSelfVote
	}
	if r.closed {
		return apperrors.ErrGameNotFound
	}
	if r.phase != PhaseVoting {
		return apperrors.ErrNotVoting
	}
	if _, ok := r.players[voterID]; !ok {
		return apperrors.ErrNotInGame
	}
	if _, ok := r.submissions[votedForID]; !ok {
		return apperrors.ErrInvalidVote
	}

	r.votes[voterID] = votedForID
	r.broadcastLocked(protocol.MsgVoteUpdate, protocol.VoteUpdatePayload{
		Voted: len(r.votes),
		Total: len(r.players),
	})

	if len(r.votes) == len(r.players) {
		r.endPhaseLocked()
	}
	return nil
}

// showResultsLocked tallies the votes, awards one point per vote received and
// reveals the authors in ballot order.
func (r *Room) showResultsLocked() {
	tally := make(map[string]int, len(r.ballot))
	for _, target := range r.votes {
		tally[target]++
	}

	results := make([]protocol.RoundResult, 0, len(r.ballot))
	for _, e := range r.ballot {
		player, present := r.players[e.authorID]
		if !present {
			continue
		}
		received := tally[e.authorID]
		r.scores[e.authorID] += received
		results = append(results, protocol.RoundResult{
			ID:         e.authorID,
			Text:       e.text,
			PlayerName: player.Name,
			Votes:      received,
		})
	}

	r.setPhaseLocked(PhaseResults)
	r.broadcastLocked(protocol.MsgResults, protocol.ResultsPayload{
		Results:     results,
		IsLastRound: r.round >= r.settings.MaxRounds,
	})
	r.broadcastRosterLocked()
}

// NextRound moves on from the results, either to a new round or, after the
// last one, to the final standings.
func (r *Room) NextRound() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return apperrors.ErrGameNotFound
	}
	if r.phase != PhaseResults {
		return apperrors.ErrRoundNotOver
	}

	if r.round >= r.settings.MaxRounds {
		r.finishLocked()
		return nil
	}

	r.round++
	r.startRoundLocked()
	return nil
}

func (r *Room) finishLocked() {
	standings := r.rosterLocked()
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	r.setPhaseLocked(PhaseFinal)
	r.broadcastLocked(protocol.MsgFinalResults, protocol.FinalResultsPayload{Scores: standings})

	log.Info().Str("room", r.Code).Int("rounds", r.round).Msg("game finished")
}

func (r *Room) setPhaseLocked(next Phase) {
	if !r.phase.CanTransitionTo(next) {
		log.Error().Str("room", r.Code).Stringer("from", r.phase).Stringer("to", next).Msg("illegal phase transition")
	}
	r.phase = next
	r.notifyLocked()
}
