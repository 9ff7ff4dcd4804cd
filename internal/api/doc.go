// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the parcbudget REST backend.
//
// The backend owns all business rules: cost calculation, cascading deletes,
// bulk estimate recalculation, credential checks. This client only shapes
// requests and maps responses and error payloads onto Go types.
//
// Every request carries a bearer token (when one is set), an X-Request-Id,
// and is subject to a client-side rate limiter plus retry with exponential
// backoff on transient failures.
package api
