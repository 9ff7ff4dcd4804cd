// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/parcbudget/parcbudget-tui/internal/budget"
)

// DefaultStaleAfter is how old a cached catalog may be before callers
// should refresh it from the backend.
const DefaultStaleAfter = 15 * time.Minute

// CatalogCache is a read-through cache of the material catalog.
type CatalogCache struct {
	db *sql.DB
	mu sync.RWMutex
}

// DefaultCachePath returns the default cache location,
// ~/.parcbudget/catalog.db.
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".parcbudget", "catalog.db"), nil
}

// OpenCatalogCache opens (creating if needed) the cache database at path.
func OpenCatalogCache(path string) (*CatalogCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite supports a single writer; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	c := &CatalogCache{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the database handle.
func (c *CatalogCache) Close() error {
	return c.db.Close()
}

// initSchema creates the cache tables.
func (c *CatalogCache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id   INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS materials (
		id          INTEGER PRIMARY KEY,
		reference   TEXT NOT NULL,
		name        TEXT NOT NULL,
		category_id INTEGER NOT NULL,
		unit        TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS cache_meta (
		key        TEXT PRIMARY KEY,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_materials_category ON materials(category_id);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create cache schema: %w", err)
	}
	return nil
}

// ReplaceCatalog swaps the cached catalog for a fresh backend snapshot in
// one transaction.
func (c *CatalogCache) ReplaceCatalog(categories []budget.Category, materials []budget.Material) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM categories"); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM materials"); err != nil {
		return fmt.Errorf("failed to clear materials: %w", err)
	}

	for _, cat := range categories {
		if _, err := tx.Exec("INSERT INTO categories (id, name) VALUES (?, ?)", cat.ID, cat.Name); err != nil {
			return fmt.Errorf("failed to insert category: %w", err)
		}
	}
	for _, m := range materials {
		if _, err := tx.Exec(
			"INSERT INTO materials (id, reference, name, category_id, unit) VALUES (?, ?, ?, ?, ?)",
			m.ID, m.Reference, m.Name, m.CategoryID, m.Unit,
		); err != nil {
			return fmt.Errorf("failed to insert material: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO cache_meta (key, updated_at) VALUES ('catalog', ?) ON CONFLICT(key) DO UPDATE SET updated_at = excluded.updated_at",
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to update cache meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// Categories returns the cached categories ordered by name.
func (c *CatalogCache) Categories() ([]budget.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query("SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []budget.Category
	for rows.Next() {
		var cat budget.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

// Materials returns the cached materials ordered by reference.
func (c *CatalogCache) Materials() ([]budget.Material, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query("SELECT id, reference, name, category_id, unit FROM materials ORDER BY reference")
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var out []budget.Material
	for rows.Next() {
		var m budget.Material
		if err := rows.Scan(&m.ID, &m.Reference, &m.Name, &m.CategoryID, &m.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MaterialsByCategory returns the cached materials of one category.
func (c *CatalogCache) MaterialsByCategory(categoryID int64) ([]budget.Material, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query(
		"SELECT id, reference, name, category_id, unit FROM materials WHERE category_id = ? ORDER BY reference",
		categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var out []budget.Material
	for rows.Next() {
		var m budget.Material
		if err := rows.Scan(&m.ID, &m.Reference, &m.Name, &m.CategoryID, &m.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// LastRefreshed returns when the catalog was last replaced, or the zero
// time if it never was.
func (c *CatalogCache) LastRefreshed() (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var unix int64
	err := c.db.QueryRow("SELECT updated_at FROM cache_meta WHERE key = 'catalog'").Scan(&unix)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query cache meta: %w", err)
	}
	return time.Unix(unix, 0), nil
}

// IsStale reports whether the cached catalog is older than staleAfter.
// An empty cache is always stale.
func (c *CatalogCache) IsStale(staleAfter time.Duration) bool {
	last, err := c.LastRefreshed()
	if err != nil || last.IsZero() {
		return true
	}
	return time.Since(last) > staleAfter
}
