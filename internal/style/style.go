package style

import "github.com/charmbracelet/lipgloss"

// Shared text styles used by the table renderer, the CLI's plain-text
// output and the `top` TUI in internal/tui.
var (
	Bold    = lipgloss.NewStyle().Bold(true)
	Dim     = lipgloss.NewStyle().Faint(true)
	Red     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	Green   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	Yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	Cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// StateStyle returns the style conventionally used to render a session
// state in CLI and TUI output.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "running":
		return Cyan
	case "done":
		return Green
	case "aborted", "failed":
		return Red
	case "exited", "skipped":
		return Yellow
	default:
		return Dim
	}
}
