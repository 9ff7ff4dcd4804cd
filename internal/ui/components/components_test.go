// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parcbudget/parcbudget-tui/internal/budget"
	"github.com/parcbudget/parcbudget-tui/internal/ui/styles"
)

// =============================================================================
// COUNTDOWN FORMATTING
// =============================================================================

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Minute, "05:00"},
		{4*time.Minute + 59*time.Second, "04:59"},
		{61 * time.Second, "01:01"},
		{1 * time.Second, "00:01"},
		{0, "00:00"},
		{-10 * time.Second, "00:00"},
		{10 * time.Minute, "10:00"},
	}

	for _, c := range cases {
		if got := FormatCountdown(c.d); got != c.want {
			t.Errorf("FormatCountdown(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

// =============================================================================
// IDLE OVERLAY
// =============================================================================

func TestIdleOverlayVisibility(t *testing.T) {
	o := NewIdleOverlay()

	if o.IsVisible() {
		t.Error("new overlay should be hidden")
	}
	if o.View() != "" {
		t.Error("hidden overlay should render nothing")
	}

	o.Show(5 * time.Minute)
	if !o.IsVisible() {
		t.Error("overlay should be visible after Show")
	}

	o.Hide()
	if o.IsVisible() {
		t.Error("overlay should be hidden after Hide")
	}
}

func TestIdleOverlayCountdownClampsAtZero(t *testing.T) {
	o := NewIdleOverlay()
	o.SetSize(80, 24)
	o.Show(3 * time.Second)

	o.UpdateRemaining(-2 * time.Second)
	if !strings.Contains(o.View(), "00:00") {
		t.Error("countdown should clamp at 00:00 once remaining runs out")
	}
}

func TestIdleOverlayWarningShowsCountdown(t *testing.T) {
	o := NewIdleOverlay()
	o.SetSize(80, 24)
	o.Show(5 * time.Minute)

	view := o.View()
	if !strings.Contains(view, "05:00") {
		t.Error("warning view should contain the countdown 05:00")
	}
	if !strings.Contains(view, "log out now") {
		t.Error("warning view should offer the log-out-now action")
	}
}

func TestIdleOverlayKeyStaysLoggedIn(t *testing.T) {
	o := NewIdleOverlay()
	o.Show(2 * time.Minute)

	o, cmd := o.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd == nil {
		t.Fatal("key press should produce a command")
	}
	if _, ok := cmd().(StayLoggedInMsg); !ok {
		t.Errorf("expected StayLoggedInMsg, got %T", cmd())
	}
	if o.IsVisible() {
		t.Error("overlay should hide after the user stays logged in")
	}
}

func TestIdleOverlayLogoutKey(t *testing.T) {
	o := NewIdleOverlay()
	o.Show(2 * time.Minute)

	o, cmd := o.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if cmd == nil {
		t.Fatal("l key should produce a command")
	}
	if _, ok := cmd().(LogoutNowMsg); !ok {
		t.Errorf("expected LogoutNowMsg, got %T", cmd())
	}
	if o.IsVisible() {
		t.Error("overlay should hide after logout")
	}
}

func TestIdleOverlayIgnoresKeysWhenHidden(t *testing.T) {
	o := NewIdleOverlay()

	_, cmd := o.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd != nil {
		t.Error("hidden overlay should not react to keys")
	}
}

// =============================================================================
// STATUS BAR
// =============================================================================

func TestStatusBarShowsUser(t *testing.T) {
	bar := NewStatusBar(styles.NewTheme())
	bar.SetWidth(120)
	bar.BackendURL = "http://127.0.0.1:8000"
	bar.SetUser(&budget.User{Username: "amina", Role: budget.RoleAdmin}, "a1b2c3d4")

	view := bar.View()
	if !strings.Contains(view, "amina") {
		t.Error("status bar should show the username")
	}
	if !strings.Contains(view, "admin") {
		t.Error("status bar should show the role")
	}
	if !strings.Contains(view, "a1b2c3d4") {
		t.Error("status bar should show the token fingerprint")
	}
}

func TestStatusBarLoggedOut(t *testing.T) {
	bar := NewStatusBar(styles.NewTheme())
	bar.SetUser(nil, "")

	view := bar.View()
	if !strings.Contains(view, "not logged in") {
		t.Error("status bar should indicate no active session")
	}
}
