package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette
var (
	PrimaryColor = lipgloss.Color("#0400FF") // app blue, form accents
	BorderColor  = lipgloss.Color("#448AFD") // modal border
	SuccessColor = lipgloss.Color("#43BF6D")
	ErrorColor   = lipgloss.Color("#FF5555")
	MutedColor   = lipgloss.Color("#626262")
	TextColor    = lipgloss.Color("#FFFFFF")
)

const (
	MinTerminalWidth = 40
	MaxContentWidth  = 80
)

// Markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
)

var (
	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ModalDetailStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	AlertTitleStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	AlertMessageStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	HintStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)
)

// ModalBoxStyle is the rounded box around the success confirmation
func ModalBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Width(width-2).
		Padding(0, 2).
		Align(lipgloss.Center)
}

// AlertBoxStyle is the box around alerts
func AlertBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ErrorColor).
		Width(width-2).
		Padding(0, 2)
}

// GetTerminalWidth returns the usable content width, clamped to sane bounds
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return MaxContentWidth
	}
	return ClampWidth(width)
}

// ClampWidth keeps a width between MinTerminalWidth and MaxContentWidth
func ClampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// IsTerminal reports whether stdout is an interactive terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
