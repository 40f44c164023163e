package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Morishima-Yoru/denkovi-relayboard/internal/tui/colors"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	RelayOnStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)

	RelayOffStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	HintStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)

	PanelBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)
)
