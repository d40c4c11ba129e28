package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/dfkit/internal/domain"
)

type Theme struct {
	Title lipgloss.Style
	Dim   lipgloss.Style
	Card  lipgloss.Style

	outcomes map[domain.PushOutcome]lipgloss.Style
}

func DefaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().Bold(true),
		Dim:   lipgloss.NewStyle().Faint(true),
		Card: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("33")),
		outcomes: map[domain.PushOutcome]lipgloss.Style{
			domain.PushCreated: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			domain.PushSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			domain.PushFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		},
	}
}

// Outcome styles text for a per-file result; unknown outcomes render as failures.
func (t Theme) Outcome(o domain.PushOutcome) lipgloss.Style {
	if s, ok := t.outcomes[o]; ok {
		return s
	}
	return t.outcomes[domain.PushFailed]
}
