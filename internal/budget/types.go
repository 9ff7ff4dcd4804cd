// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package budget

import "time"

// =============================================================================
// USERS AND ROLES
// =============================================================================

// Role is the authorization level assigned to a user by the backend.
type Role string

const (
	// RoleUser is a regular project contributor.
	RoleUser Role = "user"

	// RoleAdmin can manage projects, catalogs and prices.
	RoleAdmin Role = "admin"

	// RoleSuperAdmin can additionally manage user accounts.
	RoleSuperAdmin Role = "super_admin"
)

// IsValid reports whether the role is one the backend can issue.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanManageUsers reports whether the role may access the user admin screens.
func (r Role) CanManageUsers() bool {
	return r == RoleSuperAdmin
}

// CanManageCatalog reports whether the role may edit materials and prices.
func (r Role) CanManageCatalog() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// User is the profile record returned by the backend for an authenticated
// account. It is re-derived from the token at every hydration, never stored.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Staff    bool   `json:"is_staff"`
}

// =============================================================================
// PROJECTS
// =============================================================================

// ProjectStatus is the lifecycle state of a budgeting project.
type ProjectStatus string

const (
	StatusDraft      ProjectStatus = "draft"
	StatusStudy      ProjectStatus = "study"
	StatusApproved   ProjectStatus = "approved"
	StatusInProgress ProjectStatus = "in_progress"
	StatusDone       ProjectStatus = "done"
	StatusCancelled  ProjectStatus = "cancelled"
)

// Project is an IT infrastructure budgeting project with its server-computed
// cost estimate totals.
type Project struct {
	ID          int64         `json:"id"`
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	OwnerID     int64         `json:"owner_id"`

	// Estimate totals, computed server-side from the project's needs and
	// the current price list.
	TotalEUR float64 `json:"total_eur"`
	TotalMAD float64 `json:"total_mad"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Need is a per-project equipment or material requirement line.
type Need struct {
	ID         int64 `json:"id"`
	ProjectID  int64 `json:"project_id"`
	MaterialID int64 `json:"material_id"`
	Quantity   int   `json:"quantity"`

	// Denormalized display fields the list endpoint expands.
	MaterialName string   `json:"material_name,omitempty"`
	UnitPrice    float64  `json:"unit_price,omitempty"`
	Currency     Currency `json:"currency,omitempty"`
}

// =============================================================================
// CATALOG
// =============================================================================

// Category groups materials in the catalog (servers, network, licenses, ...).
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Material is a catalog entry that projects reference in their needs.
type Material struct {
	ID         int64  `json:"id"`
	Reference  string `json:"reference"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
	Unit       string `json:"unit,omitempty"`
}

// Price is a pricing rule for a material. Amount is stored in the given
// currency; the editor converts between EUR and MAD for display only.
type Price struct {
	ID         int64     `json:"id"`
	MaterialID int64     `json:"material_id"`
	Amount     float64   `json:"amount"`
	Currency   Currency  `json:"currency"`
	ValidFrom  time.Time `json:"valid_from"`
}
