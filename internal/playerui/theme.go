package playerui

import "github.com/charmbracelet/lipgloss"

var (
	colorText     = lipgloss.Color("#cdd6f4")
	colorMuted    = lipgloss.Color("#a6adc8")
	colorBorder   = lipgloss.Color("#45475a")
	colorAccent   = lipgloss.Color("#74c7ec")
	colorCalm     = lipgloss.Color("#a6e3a1")
	colorWarm     = lipgloss.Color("#fab387")
	colorLavender = lipgloss.Color("#b4befe")

	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Foreground(colorText).
			Padding(1, 2)

	titleStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	stageStyle    = lipgloss.NewStyle().Foreground(colorLavender).Bold(true)
	practiceStyle = lipgloss.NewStyle().Foreground(colorWarm)
	textStyle     = lipgloss.NewStyle().Foreground(colorText).Italic(true)
	timerStyle    = lipgloss.NewStyle().Foreground(colorCalm).Bold(true)
	beatOnStyle   = lipgloss.NewStyle().Foreground(colorWarm).Bold(true)
	beatOffStyle  = lipgloss.NewStyle().Foreground(colorBorder)

	stateStyles = map[string]lipgloss.Style{
		"ready":    lipgloss.NewStyle().Foreground(colorMuted),
		"running":  lipgloss.NewStyle().Foreground(colorCalm).Bold(true),
		"paused":   lipgloss.NewStyle().Foreground(colorWarm).Bold(true),
		"complete": lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
	}
)
