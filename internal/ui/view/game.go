package view

import (
	"fmt"
	"strings"

	"github.com/palemoky/waterdeep-conspiracy/internal/ui/common"
)

const (
	urgentSeconds = 10
	progressWidth = 20
)

func countdown(seconds int) string {
	text := "⏳ " + common.FormatCountdown(seconds)
	if seconds <= urgentSeconds {
		return common.UrgentStyle.Render(text)
	}
	return common.TimerStyle.Render(text)
}

func progress(p Progress, verb string) string {
	if p.Total == 0 {
		return ""
	}
	return fmt.Sprintf("%s %d/%d %s", common.ProgressBar(p.Done, p.Total, progressWidth), p.Done, p.Total, verb)
}

// WritingView shows the prompt and the countdown.
func WritingView(f Frame) string {
	var sb strings.Builder
	sb.WriteString(header(f, fmt.Sprintf("Round %d", f.Round)))
	sb.WriteString(center(f.Width, common.PromptBanner.Render(f.Prompt)))
	sb.WriteString("\n\n")
	sb.WriteString(center(f.Width, countdown(f.TimeLeft)))
	sb.WriteString("\n")
	if line := progress(f.Progress, "submitted"); line != "" {
		sb.WriteString(center(f.Width, line))
		sb.WriteString("\n")
	}
	if f.Submitted {
		sb.WriteString(center(f.Width, common.SubtleStyle.Render("Theory sent. Enter again to replace it.")))
		sb.WriteString("\n")
	}
	sb.WriteString(footer(f, "enter: submit • ctrl+s: end writing • esc: quit"))
	return sb.String()
}

// VotingView lists the anonymous theories. The player's own theory is shown
// but cannot be picked.
func VotingView(f Frame) string {
	var sb strings.Builder
	sb.WriteString(header(f, "Which theory rings true?"))

	var list strings.Builder
	if len(f.Ballot) == 0 {
		list.WriteString(common.SubtleStyle.Render("Nobody wrote anything this round"))
	}
	for i, entry := range f.Ballot {
		if i > 0 {
			list.WriteString("\n")
		}
		marker := " "
		if entry.ID == f.VotedFor {
			marker = common.VoteIcon
		}
		line := fmt.Sprintf("%s %d. %s", marker, i+1, entry.Text)
		if entry.ID == f.PlayerID {
			line = common.SubtleStyle.Render(line + " (yours)")
		}
		list.WriteString(line)
	}
	sb.WriteString(center(f.Width, common.BoxStyle.Render(list.String())))
	sb.WriteString("\n")
	if f.TimeLeft > 0 {
		sb.WriteString(center(f.Width, countdown(f.TimeLeft)))
		sb.WriteString("\n")
	}
	if line := progress(f.Progress, "voted"); line != "" {
		sb.WriteString(center(f.Width, line))
		sb.WriteString("\n")
	}
	sb.WriteString(footer(f, "number + enter: vote • ctrl+s: close voting • esc: quit"))
	return sb.String()
}

// ResultsView reveals the authors and the round's votes.
func ResultsView(f Frame) string {
	var sb strings.Builder
	sb.WriteString(header(f, fmt.Sprintf("Round %d unmasked", f.Round)))

	var list strings.Builder
	for i, r := range f.Results {
		if i > 0 {
			list.WriteString("\n\n")
		}
		fmt.Fprintf(&list, "%q\n  by %s, %d vote(s)", r.Text, common.TruncateName(r.PlayerName, maxNameWidth), r.Votes)
	}
	if len(f.Results) == 0 {
		list.WriteString(common.SubtleStyle.Render("No theories this round"))
	}
	sb.WriteString(center(f.Width, common.BoxStyle.Render(list.String())))
	sb.WriteString("\n")
	sb.WriteString(center(f.Width, scoreboard(f)))
	sb.WriteString("\n")

	hint := "enter: next round • esc: quit"
	if f.IsLastRound {
		hint = "enter: final standings • esc: quit"
	}
	sb.WriteString(footer(f, hint))
	return sb.String()
}

func scoreboard(f Frame) string {
	var sb strings.Builder
	for i, p := range f.Players {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%-22s %3d", displayName(p, f.PlayerID), p.Score)
	}
	return sb.String()
}

// FinalView shows the standings, highest score first.
func FinalView(f Frame) string {
	var sb strings.Builder
	sb.WriteString(header(f, common.TrophyIcon+" Final Standings"))

	var list strings.Builder
	for i, p := range f.Standings {
		if i > 0 {
			list.WriteString("\n")
		}
		line := fmt.Sprintf("%d. %-22s %3d", i+1, displayName(p, f.PlayerID), p.Score)
		if i == 0 {
			line = common.WinnerStyle.Render(line)
		}
		list.WriteString(line)
	}
	sb.WriteString(center(f.Width, common.BoxStyle.Render(list.String())))
	sb.WriteString("\n")
	sb.WriteString(footer(f, "enter: back to menu • esc: quit"))
	return sb.String()
}
