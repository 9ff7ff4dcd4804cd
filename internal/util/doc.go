// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the parcbudget client:
// crash-safe file writes and display-width aware string handling.
package util
