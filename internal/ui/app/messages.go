// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	"github.com/parcbudget/parcbudget-tui/internal/api"
	"github.com/parcbudget/parcbudget-tui/internal/budget"
	"github.com/parcbudget/parcbudget-tui/internal/config"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ConfigReloadedMsg carries a freshly reloaded configuration. The config
// watcher sends it from outside the program loop; only display settings
// are applied to the running model.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// hydratedMsg reports the outcome of restoring the stored session.
type hydratedMsg struct {
	err error
}

// loginDoneMsg reports the outcome of a login attempt.
type loginDoneMsg struct {
	err error
}

// settingsLoadedMsg carries the backend settings payload.
type settingsLoadedMsg struct {
	settings *api.Settings
	err      error
}

// projectsLoadedMsg carries the refreshed project list.
type projectsLoadedMsg struct {
	projects []budget.Project
	err      error
}

// needsLoadedMsg carries the needs of the selected project.
type needsLoadedMsg struct {
	projectID int64
	needs     []budget.Need
	err       error
}

// catalogRefreshedMsg reports a background catalog cache refresh.
type catalogRefreshedMsg struct {
	materials int
	err       error
}

// idleWarnMsg opens the idle warning overlay.
type idleWarnMsg struct {
	remaining time.Duration
}

// idleTickMsg advances the idle countdown.
type idleTickMsg struct {
	remaining time.Duration
}

// idleClearMsg closes the idle warning overlay after activity.
type idleClearMsg struct{}

// idleExpiredMsg reports the idle budget ran out; the session is gone.
type idleExpiredMsg struct{}
