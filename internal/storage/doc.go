// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local catalog cache.
//
// The material and category catalogs change rarely but are needed on every
// dashboard render. They are cached read-through in a small SQLite database
// under the user config dir, so the UI paints immediately from the cache
// and refreshes from the backend in the background.
package storage
