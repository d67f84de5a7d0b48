package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kisaansahayak/sahayak/internal/domain"
	"github.com/kisaansahayak/sahayak/internal/format"
)

var (
	// Styles
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("34"))

	emphasisStyle = lipgloss.NewStyle().
			Bold(true)

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	botStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("34"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))
)

func renderSpans(spans []format.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case format.SpanHeading:
			sb.WriteString(headingStyle.Render(s.Text))
		case format.SpanEmphasis:
			sb.WriteString(emphasisStyle.Render(s.Text))
		default:
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// renderBlocks lays out formatted blocks for the terminal.
func renderBlocks(blocks []format.Block) string {
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch b.Kind {
		case format.BlockList:
			for _, item := range b.Items {
				sb.WriteString("  " + bulletStyle.Render("•") + " " + renderSpans(item) + "\n")
			}
		default:
			sb.WriteString(renderSpans(b.Spans) + "\n")
		}
	}
	return sb.String()
}

// renderMessage renders one chat message with its speaker label.
func renderMessage(m domain.Message) string {
	stamp := dimStyle.Render(m.Timestamp.Local().Format("15:04"))
	if m.IsUser {
		return fmt.Sprintf("%s %s\n%s\n", userStyle.Render("You"), stamp, m.Text)
	}
	return fmt.Sprintf("%s %s\n%s", botStyle.Render("KisaanSahayak"), stamp, renderBlocks(format.Format(m.Text)))
}
