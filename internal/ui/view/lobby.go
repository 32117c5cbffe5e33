package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/waterdeep-conspiracy/internal/ui/common"
)

const banner = `╦ ╦┌─┐┌┬┐┌─┐┬─┐┌┬┐┌─┐┌─┐┌─┐
║║║├─┤ │ ├┤ ├┬┘ ││├┤ ├┤ ├─┘
╚╩╝┴ ┴ ┴ └─┘┴└──┴┘└─┘└─┘┴  `

// ConnectingView is shown until the websocket is up, or after it failed.
func ConnectingView(f Frame) string {
	body := f.Spinner + " Connecting to the city watch..."
	if f.Error != "" {
		body = common.ErrorStyle.Render(f.Error) + "\n\n" + common.SubtleStyle.Render("esc: quit")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return body
	}
	return lipgloss.Place(f.Width, f.Height, lipgloss.Center, lipgloss.Center, body)
}

// MenuView offers to create or join a game.
func MenuView(f Frame) string {
	var sb strings.Builder
	sb.WriteString(center(f.Width, common.TitleStyle(banner)))
	sb.WriteString("\n")
	sb.WriteString(center(f.Width, common.SubtleStyle.Render("C O N S P I R A C Y")))
	sb.WriteString("\n\n")

	menu := "c  create a new game\nj  join with a room code"
	sb.WriteString(center(f.Width, common.BoxStyle.Render(menu)))
	sb.WriteString("\n")
	sb.WriteString(footer(f, "enter: confirm • esc: quit"))
	return sb.String()
}

// EntryView asks for a single value, such as a room code or a name.
func EntryView(f Frame, question string) string {
	var sb strings.Builder
	sb.WriteString(header(f, "Waterdeep Conspiracy"))
	sb.WriteString(center(f.Width, question))
	sb.WriteString("\n")
	sb.WriteString(footer(f, "enter: confirm • esc: quit"))
	return sb.String()
}

// LobbyView lists who has joined while the game waits to start.
func LobbyView(f Frame) string {
	var sb strings.Builder
	sb.WriteString(header(f, common.HostIcon+" The Conspirators Gather"))

	var list strings.Builder
	if len(f.Players) == 0 {
		list.WriteString(common.SubtleStyle.Render("Nobody here yet"))
	}
	for i, p := range f.Players {
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "%s %s", common.PlayerIcon, displayName(p, f.PlayerID))
	}
	sb.WriteString(center(f.Width, common.BoxStyle.Render(list.String())))
	sb.WriteString("\n")
	sb.WriteString(center(f.Width, fmt.Sprintf("%d joined", len(f.Players))))
	sb.WriteString("\n")
	sb.WriteString(footer(f, "enter: start the game • esc: quit"))
	return sb.String()
}
