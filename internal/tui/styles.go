package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/doidoi-app/doidoi-cli/internal/output"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(output.PrimaryColor).
			Bold(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(output.MutedColor)

	optionStyle = lipgloss.NewStyle().
			Foreground(output.TextColor)

	selectedOptionStyle = lipgloss.NewStyle().
				Foreground(output.PrimaryColor).
				Bold(true)
)

func fieldStyle(focused bool) lipgloss.Style {
	border := output.MutedColor
	if focused {
		border = output.PrimaryColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func buttonStyle(focused bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Foreground(output.TextColor).
		Background(output.PrimaryColor).
		Padding(0, 3)
	if focused {
		s = s.Bold(true).Underline(true)
	}
	return s
}
