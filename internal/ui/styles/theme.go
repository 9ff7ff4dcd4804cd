// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// Compact mode tightens vertical spacing in tables and lists.
	Compact bool

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// LOGIN FORM STYLES
	// ==========================================================================

	FormBox      lipgloss.Style
	FormLabel    lipgloss.Style
	FormError    lipgloss.Style
	FormHint     lipgloss.Style
	FormButton   lipgloss.Style
	FormButtonOn lipgloss.Style

	// ==========================================================================
	// TABLE STYLES
	// ==========================================================================

	TableHeader   lipgloss.Style
	TableRow      lipgloss.Style
	TableSelected lipgloss.Style
	TableBorder   lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// OVERLAY STYLES
	// ==========================================================================

	OverlayWarnBox   lipgloss.Style
	OverlayDangerBox lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner     lipgloss.Style
	LoadingText lipgloss.Style
}

// NewTheme creates a theme tuned to the current terminal.
func NewTheme() *Theme {
	output := termenv.DefaultOutput()

	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		HasTrueColor: output.Profile == termenv.TrueColor,
		ColorProfile: output.Profile,
		Width:        80,
		Height:       24,
	}

	t.buildStyles()
	return t
}

// SetSize updates the theme's layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// buildStyles constructs all the lipgloss styles.
func (t *Theme) buildStyles() {
	t.App = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.Container = lipgloss.NewStyle().
		Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Teal).
		Padding(1, 3)

	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FormError = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	t.FormHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.FormButton = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.FormButtonOn = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Bold(true).
		Padding(0, 2)

	t.TableHeader = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.TableRow = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.TableSelected = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Teal).
		Bold(true)

	t.TableBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.OverlayWarnBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Amber).
		Padding(1, 3).
		Align(lipgloss.Center)

	t.OverlayDangerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 3).
		Align(lipgloss.Center)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Teal)

	t.LoadingText = lipgloss.NewStyle().
		Foreground(TextSecondary)
}
