// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parcbudget/parcbudget-tui/internal/ui/styles"
)

// =============================================================================
// LOADING SPINNER
// =============================================================================

// Loading wraps a spinner with a status label, shown while the stored
// session is being restored or data is being fetched.
type Loading struct {
	spinner spinner.Model
	label   string
}

// NewLoading creates a loading indicator with the given label.
func NewLoading(label string) Loading {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Teal)
	return Loading{spinner: s, label: label}
}

// SetLabel changes the status label.
func (l *Loading) SetLabel(label string) {
	l.label = label
}

// Tick returns the command that starts the spinner animation.
func (l Loading) Tick() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner animation.
func (l Loading) Update(msg tea.Msg) (Loading, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the spinner with its label.
func (l Loading) View() string {
	labelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	return l.spinner.View() + " " + labelStyle.Render(l.label)
}
