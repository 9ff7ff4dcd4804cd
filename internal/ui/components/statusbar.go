// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/parcbudget/parcbudget-tui/internal/budget"
	"github.com/parcbudget/parcbudget-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom status bar: who is logged in, which backend the
// client talks to, and the keyboard shortcuts.
type StatusBar struct {
	Username      string
	Role          budget.Role
	Fingerprint   string // Short token fingerprint, empty when logged out
	BackendURL    string
	Rate          float64 // Active EUR-to-MAD rate
	Width         int
	ShowShortcuts bool

	theme *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetUser updates the logged-in user display.
func (s *StatusBar) SetUser(user *budget.User, fingerprint string) {
	if user == nil {
		s.Username = ""
		s.Role = ""
		s.Fingerprint = ""
		return
	}
	s.Username = user.Username
	s.Role = user.Role
	s.Fingerprint = fingerprint
}

// SetRate updates the displayed EUR-to-MAD rate.
func (s *StatusBar) SetRate(rate float64) {
	s.Rate = rate
}

// View renders the status bar.
func (s *StatusBar) View() string {
	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	var parts []string

	if s.Username != "" {
		userStyle := lipgloss.NewStyle().Foreground(styles.Teal).Bold(true)
		roleStyle := s.roleStyle()
		parts = append(parts, userStyle.Render(s.Username)+" "+roleStyle.Render("["+string(s.Role)+"]"))

		if s.Fingerprint != "" {
			fpStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
			parts = append(parts, fpStyle.Render("key:"+s.Fingerprint))
		}
	} else {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render("not logged in"))
	}

	if s.BackendURL != "" {
		backendStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		parts = append(parts, backendStyle.Render(s.BackendURL))
	}

	if s.Rate > 0 {
		rateStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		parts = append(parts, rateStyle.Render(budget.FormatRate(s.Rate)))
	}

	if s.ShowShortcuts {
		parts = append(parts, s.renderShortcuts())
	}

	result := strings.Join(parts, separator)

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// roleStyle colors the role badge: admins amber, super admins rose.
func (s *StatusBar) roleStyle() lipgloss.Style {
	switch s.Role {
	case budget.RoleSuperAdmin:
		return lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	case budget.RoleAdmin:
		return lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextSecondary)
	}
}

// renderShortcuts renders keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Teal).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	shortcuts := []string{
		keyStyle.Render("r") + descStyle.Render("efresh"),
		keyStyle.Render("^L") + descStyle.Render("ogout"),
		keyStyle.Render("q") + descStyle.Render("uit"),
	}

	return strings.Join(shortcuts, " ")
}
