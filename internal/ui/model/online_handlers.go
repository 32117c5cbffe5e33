package model

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol/codec"
	"github.com/palemoky/waterdeep-conspiracy/internal/ui/view"
)

const roomCodeLength = 4

func (m *OnlineModel) handleServerMessage(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	case protocol.MsgGameCreated:
		p, err := codec.ParsePayload[protocol.GameCreatedPayload](msg)
		if err != nil {
			break
		}
		if m.creating {
			m.creating = false
			m.game.Code = p.Code
			m.setPhase(PhaseEnterName)
		}

	case protocol.MsgJoinedGame:
		p, err := codec.ParsePayload[protocol.JoinedGamePayload](msg)
		if err != nil {
			break
		}
		// The roster broadcast can arrive first, so keep it.
		m.game.Code = p.Code
		m.setPhase(PhaseLobby)

	case protocol.MsgPlayersUpdate:
		if p, err := codec.ParsePayload[protocol.PlayersUpdatePayload](msg); err == nil {
			m.game.Players = p.Players
		}

	case protocol.MsgRoundStart:
		if p, err := codec.ParsePayload[protocol.RoundStartPayload](msg); err == nil {
			m.game.startRound(p)
			m.setPhase(PhaseWriting)
		}

	case protocol.MsgTimerUpdate:
		if p, err := codec.ParsePayload[protocol.TimerUpdatePayload](msg); err == nil {
			m.game.TimeLeft = p.TimeLeft
		}

	case protocol.MsgSubmissionUpdate:
		if p, err := codec.ParsePayload[protocol.SubmissionUpdatePayload](msg); err == nil {
			m.game.Progress = view.Progress{Done: p.Submitted, Total: p.Total}
		}

	case protocol.MsgTheorySubmitted:
		m.game.Submitted = true

	case protocol.MsgVotingPhase:
		if p, err := codec.ParsePayload[protocol.VotingPhasePayload](msg); err == nil {
			m.game.startVoting(p)
			m.setPhase(PhaseVoting)
		}

	case protocol.MsgVoteUpdate:
		if p, err := codec.ParsePayload[protocol.VoteUpdatePayload](msg); err == nil {
			m.game.Progress = view.Progress{Done: p.Voted, Total: p.Total}
		}

	case protocol.MsgVoteRegistered:
		m.game.VotedFor = m.game.pendingVote

	case protocol.MsgResults:
		if p, err := codec.ParsePayload[protocol.ResultsPayload](msg); err == nil {
			m.game.Results = p.Results
			m.game.IsLastRound = p.IsLastRound
			m.setPhase(PhaseResults)
		}

	case protocol.MsgFinalResults:
		if p, err := codec.ParsePayload[protocol.FinalResultsPayload](msg); err == nil {
			m.game.Standings = p.Scores
			m.setPhase(PhaseFinal)
		}

	case protocol.MsgError:
		m.creating = false
		text, err := codec.ParsePayload[string](msg)
		if err != nil {
			return m.showError("The server reported an error")
		}
		return m.showError(*text)

	case protocol.MsgConnected:
		// The transport records the id.

	default:
		log.Debug().Str("type", string(msg.Type)).Msg("ignoring unknown message")
	}
	return nil
}

// handleKey reports whether the key was consumed. Unconsumed keys go to the
// text input.
func (m *OnlineModel) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.client.Close()
		return true, tea.Quit

	case tea.KeyCtrlS:
		if m.phase == PhaseWriting || m.phase == PhaseVoting {
			return true, m.send(m.client.SkipTimer(m.game.Code))
		}
		return true, nil

	case tea.KeyEnter:
		return true, m.handleEnter(strings.TrimSpace(m.input.Value()))
	}
	return false, nil
}

func (m *OnlineModel) handleEnter(value string) tea.Cmd {
	switch m.phase {
	case PhaseMenu:
		switch strings.ToLower(value) {
		case "c":
			m.creating = true
			m.game.Reset()
			m.input.Reset()
			return m.send(m.client.CreateGame())
		case "j":
			m.game.Reset()
			m.setPhase(PhaseEnterCode)
		default:
			m.input.Reset()
			return m.showError("Type c to create a game or j to join one")
		}

	case PhaseEnterCode:
		code := strings.ToUpper(value)
		if len(code) != roomCodeLength {
			return m.showError("Room codes have 4 characters")
		}
		m.game.Code = code
		m.setPhase(PhaseEnterName)

	case PhaseEnterName:
		if value == "" {
			return m.showError("Pick a name first")
		}
		m.name = value
		return m.send(m.client.JoinGame(m.game.Code, value))

	case PhaseLobby:
		return m.send(m.client.StartGame(m.game.Code))

	case PhaseWriting:
		if value == "" {
			return nil
		}
		m.input.Reset()
		return m.send(m.client.SubmitTheory(m.game.Code, value))

	case PhaseVoting:
		m.input.Reset()
		n, err := strconv.Atoi(value)
		entry, ok := m.game.ballotEntry(n)
		if err != nil || !ok {
			return m.showError("Pick one of the numbered theories")
		}
		if entry.ID == m.client.ID() {
			return m.showError("You can't vote for your own theory")
		}
		m.game.pendingVote = entry.ID
		return m.send(m.client.Vote(m.game.Code, entry.ID))

	case PhaseResults:
		return m.send(m.client.NextRound(m.game.Code))

	case PhaseFinal:
		m.game.Reset()
		m.setPhase(PhaseMenu)
	}
	return nil
}

// send turns a transport error into an on-screen error.
func (m *OnlineModel) send(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	log.Warn().Err(err).Str("phase", m.phase.String()).Msg("send failed")
	return m.showError("Could not reach the server: " + err.Error())
}
