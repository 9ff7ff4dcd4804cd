// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package budget defines the domain model shared by the parcbudget client:
// projects, material catalogs, users and prices, plus the client-side
// presentation logic (status-to-progress mapping, EUR/MAD unit conversion,
// currency display formatting).
//
// All cost computation and validation lives server-side; this package only
// shapes data for display and entry.
package budget
