// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/parcbudget/parcbudget-tui/internal/budget"
)

// Settings is the backend settings payload consumed at startup.
type Settings struct {
	// EURToMAD is the live conversion rate applied by the price editor.
	EURToMAD float64 `json:"eur_to_mad"`
}

// Settings fetches the backend settings payload.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// =============================================================================
// PROJECTS
// =============================================================================

// ListProjects returns all projects visible to the current user.
func (c *Client) ListProjects(ctx context.Context) ([]budget.Project, error) {
	var projects []budget.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns one project by id.
func (c *Client) GetProject(ctx context.Context, id int64) (*budget.Project, error) {
	var p budget.Project
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject creates a project and returns the stored record.
func (c *Client) CreateProject(ctx context.Context, p budget.Project) (*budget.Project, error) {
	var out budget.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject updates a project and returns the stored record.
func (c *Client) UpdateProject(ctx context.Context, p budget.Project) (*budget.Project, error) {
	var out budget.Project
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/projects/%d", p.ID), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project. The backend cascades to its needs.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/projects/%d", id), nil, nil)
}

// RecalculateProject asks the backend to recompute the project's estimate
// from the current price list. The computation is entirely server-side.
func (c *Client) RecalculateProject(ctx context.Context, id int64) (*budget.Project, error) {
	var out budget.Project
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/projects/%d/recalculate", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListNeeds returns the material needs of one project.
func (c *Client) ListNeeds(ctx context.Context, projectID int64) ([]budget.Need, error) {
	var needs []budget.Need
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/projects/%d/needs", projectID), nil, &needs); err != nil {
		return nil, err
	}
	return needs, nil
}

// =============================================================================
// CATALOG
// =============================================================================

// ListMaterials returns the material catalog.
func (c *Client) ListMaterials(ctx context.Context) ([]budget.Material, error) {
	var materials []budget.Material
	if err := c.do(ctx, http.MethodGet, "/api/materials", nil, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

// ListCategories returns the catalog categories.
func (c *Client) ListCategories(ctx context.Context) ([]budget.Category, error) {
	var categories []budget.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SaveMaterial creates or updates a catalog material. Requires admin.
func (c *Client) SaveMaterial(ctx context.Context, m budget.Material) (*budget.Material, error) {
	var out budget.Material
	method, path := http.MethodPost, "/api/materials"
	if m.ID != 0 {
		method, path = http.MethodPut, fmt.Sprintf("/api/materials/%d", m.ID)
	}
	if err := c.do(ctx, method, path, m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMaterial removes a catalog material. Requires admin.
func (c *Client) DeleteMaterial(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/materials/%d", id), nil, nil)
}

// SaveCategory creates or updates a catalog category. Requires admin.
func (c *Client) SaveCategory(ctx context.Context, cat budget.Category) (*budget.Category, error) {
	var out budget.Category
	method, path := http.MethodPost, "/api/categories"
	if cat.ID != 0 {
		method, path = http.MethodPut, fmt.Sprintf("/api/categories/%d", cat.ID)
	}
	if err := c.do(ctx, method, path, cat, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes a catalog category. The backend refuses when
// materials still reference it.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), nil, nil)
}

// ListPrices returns the pricing rules for one material.
func (c *Client) ListPrices(ctx context.Context, materialID int64) ([]budget.Price, error) {
	var prices []budget.Price
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/materials/%d/prices", materialID), nil, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// SavePrice creates or updates a pricing rule.
func (c *Client) SavePrice(ctx context.Context, p budget.Price) (*budget.Price, error) {
	var out budget.Price
	method, path := http.MethodPost, "/api/prices"
	if p.ID != 0 {
		method, path = http.MethodPut, fmt.Sprintf("/api/prices/%d", p.ID)
	}
	if err := c.do(ctx, method, path, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePrice removes a pricing rule.
func (c *Client) DeletePrice(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/prices/%d", id), nil, nil)
}

// =============================================================================
// USERS
// =============================================================================

// ListUsers returns all user accounts. Requires super_admin.
func (c *Client) ListUsers(ctx context.Context) ([]budget.User, error) {
	var users []budget.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user account. Requires super_admin.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), nil, nil)
}
