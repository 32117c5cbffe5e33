// Package common provides shared styles and utilities for the UI.
package common

import "github.com/charmbracelet/lipgloss"

// Icon constants
const (
	HostIcon   = "📜"
	PlayerIcon = "🕵"
	TrophyIcon = "🏆"
	VoteIcon   = "✔"
)

// Lipgloss styles shared by every screen.
var (
	DocStyle     = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	SubtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	BoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PromptStyle  = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	CodeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	TimerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	UrgentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	WinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	PromptBanner = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Italic(true)
)
