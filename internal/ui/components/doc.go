// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the UI components for the parcbudget TUI:
// the idle-timeout warning overlay, the status bar, and the loading spinner.
package components
