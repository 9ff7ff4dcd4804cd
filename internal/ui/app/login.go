// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parcbudget/parcbudget-tui/internal/ui/styles"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

// loginSubmitMsg carries the credentials the user entered.
type loginSubmitMsg struct {
	username string
	password string
}

// loginForm is the credential entry screen shown to unauthenticated users.
type loginForm struct {
	username textinput.Model
	password textinput.Model
	focused  int // 0 = username, 1 = password

	// errText shows the last login failure, notice shows session messages
	// like "logged out due to inactivity".
	errText string
	notice  string

	busy  bool
	theme *styles.Theme
}

// newLoginForm creates the login form with the username field focused.
func newLoginForm(theme *styles.Theme) loginForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 32
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 32
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginForm{
		username: username,
		password: password,
		theme:    theme,
	}
}

// setError records a login failure and re-enables the form.
func (f *loginForm) setError(text string) {
	f.errText = text
	f.busy = false
}

// setNotice shows an informational banner above the form.
func (f *loginForm) setNotice(text string) {
	f.notice = text
}

// reset clears both fields and refocuses the username input.
func (f *loginForm) reset() {
	f.username.SetValue("")
	f.password.SetValue("")
	f.password.Blur()
	f.username.Focus()
	f.focused = 0
	f.errText = ""
	f.busy = false
}

// Update handles key input for the form.
func (f loginForm) Update(msg tea.Msg) (loginForm, tea.Cmd) {
	if f.busy {
		return f, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "shift+tab", "up", "down":
			f.focusNext()
			return f, nil

		case "enter":
			if f.focused == 0 {
				f.focusNext()
				return f, nil
			}
			username := f.username.Value()
			password := f.password.Value()
			if username == "" || password == "" {
				f.errText = "Username and password are required."
				return f, nil
			}
			f.busy = true
			f.errText = ""
			f.notice = ""
			return f, func() tea.Msg {
				return loginSubmitMsg{username: username, password: password}
			}
		}
	}

	var cmd tea.Cmd
	if f.focused == 0 {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd
}

// focusNext moves focus between the two fields.
func (f *loginForm) focusNext() {
	if f.focused == 0 {
		f.focused = 1
		f.username.Blur()
		f.password.Focus()
	} else {
		f.focused = 0
		f.password.Blur()
		f.username.Focus()
	}
}

// View renders the login form centered on screen.
func (f loginForm) View(width, height int) string {
	var parts []string

	parts = append(parts, f.theme.HeaderTitle.Render("ParcBudget"))
	parts = append(parts, f.theme.HeaderSubtitle.Render("IT park budgeting"))
	parts = append(parts, "")

	if f.notice != "" {
		parts = append(parts, styles.RenderWarning(f.notice), "")
	}
	if f.errText != "" {
		parts = append(parts, f.theme.FormError.Render(f.errText), "")
	}

	parts = append(parts, f.theme.FormLabel.Render("Username"))
	parts = append(parts, f.username.View())
	parts = append(parts, "")
	parts = append(parts, f.theme.FormLabel.Render("Password"))
	parts = append(parts, f.password.View())
	parts = append(parts, "")

	if f.busy {
		parts = append(parts, f.theme.FormHint.Render("Signing in..."))
	} else {
		parts = append(parts, f.theme.FormHint.Render("enter to sign in, tab to switch fields"))
	}

	box := f.theme.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
