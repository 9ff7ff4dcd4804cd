// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/parcbudget/parcbudget-tui/internal/budget"
)

func openTestCache(t *testing.T) *CatalogCache {
	t.Helper()
	c, err := OpenCatalogCache(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenCatalogCache failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalogCache_RoundTrip(t *testing.T) {
	c := openTestCache(t)

	categories := []budget.Category{
		{ID: 1, Name: "Servers"},
		{ID: 2, Name: "Network"},
	}
	materials := []budget.Material{
		{ID: 10, Reference: "SRV-R650", Name: "Rack server", CategoryID: 1, Unit: "unit"},
		{ID: 11, Reference: "SW-9300", Name: "Core switch", CategoryID: 2, Unit: "unit"},
		{ID: 12, Reference: "SRV-R750", Name: "Rack server XL", CategoryID: 1, Unit: "unit"},
	}

	if err := c.ReplaceCatalog(categories, materials); err != nil {
		t.Fatalf("ReplaceCatalog failed: %v", err)
	}

	gotCats, err := c.Categories()
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(gotCats) != 2 {
		t.Fatalf("len(categories) = %d, want 2", len(gotCats))
	}
	// Ordered by name: Network before Servers.
	if gotCats[0].Name != "Network" {
		t.Errorf("first category = %q, want Network", gotCats[0].Name)
	}

	gotMats, err := c.MaterialsByCategory(1)
	if err != nil {
		t.Fatalf("MaterialsByCategory failed: %v", err)
	}
	if len(gotMats) != 2 {
		t.Fatalf("len(materials in cat 1) = %d, want 2", len(gotMats))
	}
	if gotMats[0].Reference != "SRV-R650" {
		t.Errorf("first material = %q, want SRV-R650", gotMats[0].Reference)
	}
}

func TestCatalogCache_ReplaceDropsOldRows(t *testing.T) {
	c := openTestCache(t)

	if err := c.ReplaceCatalog(
		[]budget.Category{{ID: 1, Name: "Servers"}},
		[]budget.Material{{ID: 10, Reference: "OLD", Name: "Old", CategoryID: 1}},
	); err != nil {
		t.Fatalf("first ReplaceCatalog failed: %v", err)
	}
	if err := c.ReplaceCatalog(
		[]budget.Category{{ID: 2, Name: "Licenses"}},
		[]budget.Material{{ID: 20, Reference: "NEW", Name: "New", CategoryID: 2}},
	); err != nil {
		t.Fatalf("second ReplaceCatalog failed: %v", err)
	}

	mats, err := c.Materials()
	if err != nil {
		t.Fatalf("Materials failed: %v", err)
	}
	if len(mats) != 1 || mats[0].Reference != "NEW" {
		t.Errorf("stale rows survived replace: %+v", mats)
	}
}

func TestCatalogCache_Staleness(t *testing.T) {
	c := openTestCache(t)

	if !c.IsStale(time.Hour) {
		t.Error("empty cache should be stale")
	}

	if err := c.ReplaceCatalog(nil, nil); err != nil {
		t.Fatalf("ReplaceCatalog failed: %v", err)
	}
	if c.IsStale(time.Hour) {
		t.Error("freshly replaced cache should not be stale")
	}
	if !c.IsStale(0) {
		t.Error("zero stale-after should always report stale")
	}

	last, err := c.LastRefreshed()
	if err != nil {
		t.Fatalf("LastRefreshed failed: %v", err)
	}
	if last.IsZero() {
		t.Error("LastRefreshed should be set after replace")
	}
}
