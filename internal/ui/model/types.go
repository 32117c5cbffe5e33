// Package model holds the bubbletea model for the terminal client.
package model

import (
	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
)

// GamePhase is the screen the client is on.
type GamePhase int

const (
	PhaseConnecting GamePhase = iota
	PhaseMenu
	PhaseEnterCode
	PhaseEnterName
	PhaseLobby
	PhaseWriting
	PhaseVoting
	PhaseResults
	PhaseFinal
)

func (p GamePhase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseMenu:
		return "menu"
	case PhaseEnterCode:
		return "enterCode"
	case PhaseEnterName:
		return "enterName"
	case PhaseLobby:
		return "lobby"
	case PhaseWriting:
		return "writing"
	case PhaseVoting:
		return "voting"
	case PhaseResults:
		return "results"
	case PhaseFinal:
		return "final"
	default:
		return "unknown"
	}
}

// --- tea messages ---

// ServerMessage wraps a message read from the server.
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg is sent once the websocket is up.
type ConnectedMsg struct{}

// ConnectionErrorMsg is sent when connecting fails or the connection drops.
type ConnectionErrorMsg struct {
	Err error
}

// ClearErrorMsg hides the error with the given sequence number.
type ClearErrorMsg struct {
	Seq int
}

// Transport is the server connection the model drives. *client.Client
// implements it.
type Transport interface {
	Connect() error
	Receive() (*protocol.Message, error)
	IsConnected() bool
	ID() string
	Close()

	CreateGame() error
	JoinGame(code, name string) error
	StartGame(code string) error
	SubmitTheory(code, theory string) error
	Vote(code, authorID string) error
	NextRound(code string) error
	SkipTimer(code string) error
}
