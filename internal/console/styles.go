package console

import "github.com/charmbracelet/lipgloss"

// --- Color palette ---

var (
	Gray   = lipgloss.Color("#888888")
	Green  = lipgloss.Color("#5FD787")
	Yellow = lipgloss.Color("#FFD787")
	Red    = lipgloss.Color("#FF8787")
)

// styles are bound to the renderer of the writer they print to, so colour
// is dropped when that writer is not a terminal.
type styles struct {
	info    lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
	label   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		info:    r.NewStyle().Foreground(Yellow),
		success: r.NewStyle().Foreground(Green).Bold(true),
		err:     r.NewStyle().Foreground(Red).Bold(true),
		label:   r.NewStyle().Foreground(Gray).Bold(true),
	}
}
