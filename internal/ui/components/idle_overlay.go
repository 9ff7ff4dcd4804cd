// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parcbudget/parcbudget-tui/internal/ui/styles"
)

// =============================================================================
// IDLE WARNING OVERLAY
// =============================================================================

// IdleOverlay displays a modal warning when the session is about to expire
// from inactivity. It shows a live countdown and offers two actions: stay
// logged in, or log out immediately.
type IdleOverlay struct {
	visible   bool
	remaining time.Duration

	width  int
	height int
}

// NewIdleOverlay creates a hidden idle warning overlay.
func NewIdleOverlay() IdleOverlay {
	return IdleOverlay{}
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// SetSize sets the overlay dimensions.
func (o *IdleOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Show displays the overlay with the given time remaining.
func (o *IdleOverlay) Show(remaining time.Duration) {
	o.visible = true
	o.remaining = remaining
}

// Hide hides the overlay.
func (o *IdleOverlay) Hide() {
	o.visible = false
}

// UpdateRemaining updates the countdown.
func (o *IdleOverlay) UpdateRemaining(remaining time.Duration) {
	o.remaining = remaining
}

// IsVisible returns whether the overlay is currently visible.
func (o *IdleOverlay) IsVisible() bool {
	return o.visible
}

// Remaining returns the current time remaining.
func (o *IdleOverlay) Remaining() time.Duration {
	return o.remaining
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// StayLoggedInMsg signals the user chose to keep their session alive.
type StayLoggedInMsg struct{}

// LogoutNowMsg signals the user chose to log out immediately.
type LogoutNowMsg struct{}

// Update handles messages for the overlay. While the warning is visible,
// "l" logs out immediately and any other key keeps the session alive.
func (o IdleOverlay) Update(msg tea.Msg) (IdleOverlay, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height

	case tea.KeyMsg:
		if !o.visible {
			return o, nil
		}
		if msg.String() == "l" {
			o.Hide()
			return o, func() tea.Msg { return LogoutNowMsg{} }
		}
		o.Hide()
		return o, func() tea.Msg { return StayLoggedInMsg{} }
	}

	return o, nil
}

// View renders the idle warning overlay. Expiry never renders here: the
// monitor tears the session down at zero and the guard redirects to the
// login screen, which carries the logged-out notice.
func (o IdleOverlay) View() string {
	if !o.visible {
		return ""
	}
	return o.viewWarning()
}

// =============================================================================
// RENDER METHODS
// =============================================================================

func (o IdleOverlay) dimensions() (width, height, maxWidth int) {
	width = o.width
	if width == 0 {
		width = 60
	}
	height = o.height
	if height == 0 {
		height = 24
	}

	maxWidth = width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}
	return width, height, maxWidth
}

// viewWarning renders the countdown warning before the session expires.
func (o IdleOverlay) viewWarning() string {
	width, height, maxWidth := o.dimensions()

	timeStr := FormatCountdown(o.remaining)

	var parts []string

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true)
	parts = append(parts, titleStyle.Render(styles.StatusIndicators.Warning+" Still there?"))

	parts = append(parts, "")

	timeStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Bold(true)
	msgStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 4).
		Align(lipgloss.Center)
	parts = append(parts, msgStyle.Render(
		"You will be logged out in "+timeStyle.Render(timeStr)))

	parts = append(parts, "")

	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Teal).
		Bold(true)
	hintStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Align(lipgloss.Center)
	parts = append(parts, hintStyle.Render(
		keyStyle.Render("any key")+" stay logged in   "+keyStyle.Render("l")+" log out now"))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)

	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Amber).
		Padding(1, 3).
		Width(maxWidth).
		Align(lipgloss.Center)

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		boxStyle.Render(content),
		lipgloss.WithWhitespaceBackground(styles.SurfaceDim),
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// FormatCountdown formats a duration as MM:SS for display, clamping
// negative values to "00:00".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	totalSecs := int(d.Seconds())
	mins := totalSecs / 60
	secs := totalSecs % 60

	return fmt.Sprintf("%02d:%02d", mins, secs)
}
