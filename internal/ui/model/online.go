package model

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/waterdeep-conspiracy/internal/ui/common"
	"github.com/palemoky/waterdeep-conspiracy/internal/ui/view"
)

const (
	errorDisplayTime = 4 * time.Second
	maxNameLength    = 20
	maxTheoryLength  = 280
)

// OnlineModel is the bubbletea model of the terminal client.
type OnlineModel struct {
	client Transport
	phase  GamePhase
	game   GameState

	name     string
	creating bool // waiting for gameCreated before asking for a name

	error    string
	errorSeq int

	input   textinput.Model
	spinner spinner.Model

	width  int
	height int
}

// NewOnlineModel creates a model that talks to the server through c.
func NewOnlineModel(c Transport) *OnlineModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &OnlineModel{
		client:  c,
		phase:   PhaseConnecting,
		input:   ti,
		spinner: sp,
	}
}

// Phase returns the current screen.
func (m *OnlineModel) Phase() GamePhase { return m.phase }

// Game returns the known room state.
func (m *OnlineModel) Game() *GameState { return &m.game }

// Error returns the error on display, if any.
func (m *OnlineModel) Error() string { return m.error }

func (m *OnlineModel) Init() tea.Cmd {
	return tea.Batch(m.connectToServer(), textinput.Blink, m.spinner.Tick)
}

func (m *OnlineModel) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m *OnlineModel) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ConnectedMsg:
		m.error = ""
		m.setPhase(PhaseMenu)
		cmds = append(cmds, m.listenForMessages())

	case ConnectionErrorMsg:
		m.error = "Lost the connection to the server: " + msg.Err.Error()
		m.setPhase(PhaseConnecting)
		return m, nil

	case ClearErrorMsg:
		if msg.Seq == m.errorSeq {
			m.error = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.phase != PhaseConnecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ServerMessage:
		if cmd := m.handleServerMessage(msg.Msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.client.IsConnected() {
			cmds = append(cmds, m.listenForMessages())
		}

	case tea.KeyMsg:
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// showError displays text until a newer error replaces it or it times out.
func (m *OnlineModel) showError(text string) tea.Cmd {
	m.errorSeq++
	seq := m.errorSeq
	m.error = text
	return tea.Tick(errorDisplayTime, func(time.Time) tea.Msg {
		return ClearErrorMsg{Seq: seq}
	})
}

// setPhase switches screens and prepares the input line for it.
func (m *OnlineModel) setPhase(p GamePhase) {
	m.phase = p
	m.input.Reset()
	m.input.CharLimit = 0

	switch p {
	case PhaseMenu:
		m.input.Placeholder = "c or j"
		m.input.CharLimit = 1
	case PhaseEnterCode:
		m.input.Placeholder = "ABCD"
		m.input.CharLimit = 4
	case PhaseEnterName:
		m.input.Placeholder = "your name"
		m.input.CharLimit = maxNameLength
		if m.name != "" {
			m.input.SetValue(m.name)
		}
	case PhaseWriting:
		m.input.Placeholder = "your theory"
		m.input.CharLimit = maxTheoryLength
	case PhaseVoting:
		m.input.Placeholder = "number"
		m.input.CharLimit = 3
	default:
		m.input.Placeholder = ""
	}
}

func (m *OnlineModel) frame() view.Frame {
	f := view.Frame{
		Width:       m.width,
		Height:      m.height,
		PlayerID:    m.client.ID(),
		Name:        m.name,
		Code:        m.game.Code,
		Error:       m.error,
		Spinner:     m.spinner.View(),
		Players:     m.game.Players,
		Round:       m.game.Round,
		Prompt:      m.game.Prompt,
		TimeLeft:    m.game.TimeLeft,
		Submitted:   m.game.Submitted,
		Progress:    m.game.Progress,
		Ballot:      m.game.Ballot,
		VotedFor:    m.game.VotedFor,
		Results:     m.game.Results,
		IsLastRound: m.game.IsLastRound,
		Standings:   m.game.Standings,
	}
	switch m.phase {
	case PhaseMenu, PhaseEnterCode, PhaseEnterName, PhaseWriting, PhaseVoting:
		f.Input = m.input.View()
	}
	return f
}

func (m *OnlineModel) View() string {
	f := m.frame()
	if m.phase == PhaseConnecting {
		return view.ConnectingView(f)
	}

	var body string
	switch m.phase {
	case PhaseMenu:
		body = view.MenuView(f)
	case PhaseEnterCode:
		body = view.EntryView(f, "Enter the 4 character room code")
	case PhaseEnterName:
		body = view.EntryView(f, "What do they call you?")
	case PhaseLobby:
		body = view.LobbyView(f)
	case PhaseWriting:
		body = view.WritingView(f)
	case PhaseVoting:
		body = view.VotingView(f)
	case PhaseResults:
		body = view.ResultsView(f)
	case PhaseFinal:
		body = view.FinalView(f)
	}
	return common.DocStyle.Render(body)
}
