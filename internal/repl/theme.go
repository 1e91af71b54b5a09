package repl

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme REPL 输出样式；renderer 绑定到输出流，非终端时自动去色
// Theme holds REPL styles bound to the output stream, so non-terminals get plain text
type Theme struct {
	Assistant lipgloss.Style
	User      lipgloss.Style
	Pending   lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style
	Title     lipgloss.Style
}

func NewTheme(out io.Writer) Theme {
	r := lipgloss.NewRenderer(out)
	primary := lipgloss.Color("#7C3AED")
	secondary := lipgloss.Color("#06B6D4")
	warning := lipgloss.Color("#F59E0B")
	danger := lipgloss.Color("#EF4444")
	success := lipgloss.Color("#10B981")
	muted := lipgloss.Color("#6B7280")

	return Theme{
		Assistant: r.NewStyle().Foreground(primary).Bold(true),
		User:      r.NewStyle().Foreground(secondary),
		Pending:   r.NewStyle().Foreground(warning).Bold(true),
		Error:     r.NewStyle().Foreground(danger).Bold(true),
		Success:   r.NewStyle().Foreground(success),
		Muted:     r.NewStyle().Foreground(muted),
		Title:     r.NewStyle().Foreground(primary).Bold(true),
	}
}
