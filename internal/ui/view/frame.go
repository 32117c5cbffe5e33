// Package view renders the client screens. Renderers are pure: they take a
// Frame and return a string, so they can be tested without a terminal.
package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/waterdeep-conspiracy/internal/protocol"
	"github.com/palemoky/waterdeep-conspiracy/internal/ui/common"
)

const maxNameWidth = 16

// Frame is everything a screen may draw.
type Frame struct {
	Width  int
	Height int

	PlayerID string
	Name     string
	Code     string
	Error    string
	Input    string // rendered text input
	Spinner  string

	Players []protocol.PlayerInfo

	Round     int
	Prompt    string
	TimeLeft  int
	Submitted bool
	Progress  Progress // submissions while writing, votes while voting

	Ballot   []protocol.BallotEntry
	VotedFor string

	Results     []protocol.RoundResult
	IsLastRound bool
	Standings   []protocol.PlayerInfo
}

// Progress counts how many players have acted.
type Progress struct {
	Done  int
	Total int
}

func center(width int, s string) string {
	if width <= 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

// footer renders the input line, the last error and the key hints.
func footer(f Frame, hints string) string {
	var sb strings.Builder
	if f.Input != "" {
		sb.WriteString(common.PromptStyle.Render(f.Input))
		sb.WriteString("\n")
	}
	if f.Error != "" {
		sb.WriteString(common.ErrorStyle.Render(f.Error))
		sb.WriteString("\n")
	}
	sb.WriteString(common.SubtleStyle.Render(hints))
	return sb.String()
}

func header(f Frame, title string) string {
	var sb strings.Builder
	sb.WriteString(center(f.Width, common.TitleStyle(title)))
	if f.Code != "" {
		sb.WriteString("\n")
		sb.WriteString(center(f.Width, "Room "+common.CodeStyle.Render(f.Code)))
	}
	sb.WriteString("\n\n")
	return sb.String()
}

func displayName(p protocol.PlayerInfo, me string) string {
	name := common.TruncateName(p.Name, maxNameWidth)
	if p.ID == me {
		name += " (you)"
	}
	return name
}
