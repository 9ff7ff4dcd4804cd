// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// handlers.go - non-interactive command handlers for parcbudget.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/parcbudget/parcbudget-tui/internal/api"
	"github.com/parcbudget/parcbudget-tui/internal/auth"
	"github.com/parcbudget/parcbudget-tui/internal/budget"
	"github.com/parcbudget/parcbudget-tui/internal/config"
	"github.com/parcbudget/parcbudget-tui/internal/storage"
	"github.com/parcbudget/parcbudget-tui/internal/util"
)

const commandTimeout = 30 * time.Second

// =============================================================================
// BOOTSTRAP
// =============================================================================

// bootstrap loads the configuration and wires the API client and session
// the way every non-interactive command needs them.
func bootstrap(args Args) (*config.Config, *api.Client, *auth.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if args.Backend != "" {
		cfg.Backend.URL = args.Backend
	}

	client := api.NewClient(cfg.Backend.URL).WithTimeout(cfg.Timeout())
	if cfg.Backend.InsecureTLS {
		client = client.WithInsecureTLS()
	}

	tokenPath, err := auth.DefaultTokenPath()
	if err != nil {
		return nil, nil, nil, err
	}
	session := auth.NewSession(client, auth.NewFileTokenStore(tokenPath))

	return cfg, client, session, nil
}

// hydrate restores the stored session, required by commands that talk to
// authenticated endpoints.
func hydrate(session *auth.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return session.Hydrate(ctx)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// AUTH COMMANDS
// =============================================================================

// HandleLogin signs in and stores the session token.
func HandleLogin(args Args) error {
	_, client, session, err := bootstrap(args)
	if err != nil {
		return err
	}

	username := args.Username
	if username == "" {
		if username, err = promptLine("Username: "); err != nil {
			return err
		}
	}
	if username == "" {
		return errors.New("a username is required")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := session.Login(ctx, username, password); err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			return fmt.Errorf("login failed: %s", err)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	user := session.User()
	if !args.Quiet {
		fmt.Printf("Logged in as %s (%s), token %s\n",
			user.Username, user.Role, client.TokenFingerprint())
	}
	return nil
}

// HandleLogout revokes and forgets the stored token.
func HandleLogout(args Args) error {
	_, _, session, err := bootstrap(args)
	if err != nil {
		return err
	}

	if err := hydrate(session); err != nil {
		return err
	}
	if session.User() == nil {
		if !args.Quiet {
			fmt.Println("Not logged in.")
		}
		return nil
	}

	session.Logout()
	if !args.Quiet {
		fmt.Println("Logged out.")
	}
	return nil
}

// HandleWhoami shows the logged-in user.
func HandleWhoami(args Args) error {
	_, client, session, err := bootstrap(args)
	if err != nil {
		return err
	}
	if err := hydrate(session); err != nil {
		return err
	}

	user := session.User()
	if user == nil {
		return errors.New("not logged in")
	}

	if args.JSON {
		return printJSON(user)
	}
	fmt.Printf("%s (%s)\n", user.Username, user.Role)
	if args.Verbose {
		fmt.Printf("  id:    %d\n", user.ID)
		fmt.Printf("  email: %s\n", user.Email)
		fmt.Printf("  token: %s\n", client.TokenFingerprint())
	}
	return nil
}

// =============================================================================
// STATUS COMMAND
// =============================================================================

type statusReport struct {
	Backend   string  `json:"backend"`
	Reachable bool    `json:"reachable"`
	LoggedIn  bool    `json:"logged_in"`
	Username  string  `json:"username,omitempty"`
	Role      string  `json:"role,omitempty"`
	Token     string  `json:"token_fingerprint,omitempty"`
	EURToMAD  float64 `json:"eur_to_mad,omitempty"`
	Catalog   string  `json:"catalog,omitempty"`
}

// HandleStatus shows backend reachability and session status.
func HandleStatus(args Args) error {
	cfg, client, session, err := bootstrap(args)
	if err != nil {
		return err
	}

	report := statusReport{Backend: cfg.Backend.URL}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if settings, err := client.Settings(ctx); err == nil {
		report.Reachable = true
		report.EURToMAD = settings.EURToMAD
	}

	if err := hydrate(session); err == nil {
		if user := session.User(); user != nil {
			report.LoggedIn = true
			report.Username = user.Username
			report.Role = string(user.Role)
			report.Token = client.TokenFingerprint()
		}
	}

	if cfg.Cache.Enabled {
		if path, err := storage.DefaultCachePath(); err == nil {
			if cache, err := storage.OpenCatalogCache(path); err == nil {
				defer cache.Close()
				if last, err := cache.LastRefreshed(); err == nil && !last.IsZero() {
					report.Catalog = fmt.Sprintf("refreshed %s", last.Format(time.RFC3339))
				} else {
					report.Catalog = "empty"
				}
			}
		}
	}

	if args.JSON {
		return printJSON(report)
	}

	fmt.Printf("Backend:  %s\n", report.Backend)
	if report.Reachable {
		fmt.Printf("Status:   reachable (1 EUR = %.2f MAD)\n", report.EURToMAD)
	} else {
		fmt.Println("Status:   unreachable")
	}
	if report.LoggedIn {
		fmt.Printf("Session:  %s (%s), token %s\n", report.Username, report.Role, report.Token)
	} else {
		fmt.Println("Session:  not logged in")
	}
	if report.Catalog != "" {
		fmt.Printf("Catalog:  %s\n", report.Catalog)
	}
	return nil
}

// =============================================================================
// PROJECTS COMMAND
// =============================================================================

// HandleProjects lists projects non-interactively.
func HandleProjects(args Args) error {
	_, client, session, err := bootstrap(args)
	if err != nil {
		return err
	}
	if err := hydrate(session); err != nil {
		return err
	}
	if session.User() == nil {
		return errors.New("not logged in; run `parcbudget login` first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	projects, err := client.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	// Optional --status filter, e.g. `parcbudget projects --status approved`.
	if status := NewArgParser(args.Raw).Flag("status"); status != "" {
		filtered := projects[:0]
		for _, p := range projects {
			if string(p.Status) == status {
				filtered = append(filtered, p)
			}
		}
		projects = filtered
	}

	if args.JSON {
		return printJSON(projects)
	}

	if len(projects) == 0 {
		fmt.Println("No projects.")
		return nil
	}

	fmt.Printf("%-5s %-30s %-12s %9s %18s %18s\n",
		"ID", "PROJECT", "STATUS", "PROGRESS", "TOTAL EUR", "TOTAL MAD")
	for _, p := range projects {
		fmt.Printf("%-5d %s %-12s %8d%% %18s %18s\n",
			p.ID, util.PadWidth(util.TruncateWidth(p.Name, 30), 30), p.Status, p.Status.Progress(),
			budget.FormatAmount(p.TotalEUR, budget.EUR),
			budget.FormatAmount(p.TotalMAD, budget.MAD))
	}
	return nil
}

// =============================================================================
// CATALOG COMMAND
// =============================================================================

// HandleCatalog manages the local material catalog cache.
func HandleCatalog(args Args) error {
	cfg, client, session, err := bootstrap(args)
	if err != nil {
		return err
	}
	if !cfg.Cache.Enabled {
		return errors.New("catalog cache is disabled in the configuration")
	}

	path := cfg.Cache.Path
	if path == "" {
		if path, err = storage.DefaultCachePath(); err != nil {
			return err
		}
	}
	cache, err := storage.OpenCatalogCache(path)
	if err != nil {
		return fmt.Errorf("failed to open catalog cache: %w", err)
	}
	defer cache.Close()

	switch args.Subcommand {
	case "", "show":
		return catalogShow(cache, args)
	case "refresh":
		return catalogRefresh(cache, client, session, args)
	default:
		return fmt.Errorf("unknown catalog subcommand: %s", args.Subcommand)
	}
}

func catalogShow(cache *storage.CatalogCache, args Args) error {
	categories, err := cache.Categories()
	if err != nil {
		return err
	}
	materials, err := cache.Materials()
	if err != nil {
		return err
	}

	if args.JSON {
		return printJSON(map[string]any{
			"categories": categories,
			"materials":  materials,
		})
	}

	if len(materials) == 0 {
		fmt.Println("Catalog cache is empty; run `parcbudget catalog refresh`.")
		return nil
	}

	byCategory := make(map[int64][]string)
	for _, m := range materials {
		byCategory[m.CategoryID] = append(byCategory[m.CategoryID], m.Name)
	}
	for _, c := range categories {
		fmt.Printf("%s (%d)\n", c.Name, len(byCategory[c.ID]))
		for _, name := range byCategory[c.ID] {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}

func catalogRefresh(cache *storage.CatalogCache, client *api.Client, session *auth.Session, args Args) error {
	if err := hydrate(session); err != nil {
		return err
	}
	if session.User() == nil {
		return errors.New("not logged in; run `parcbudget login` first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	categories, err := client.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch categories: %w", err)
	}
	materials, err := client.ListMaterials(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch materials: %w", err)
	}
	if err := cache.ReplaceCatalog(categories, materials); err != nil {
		return fmt.Errorf("failed to store catalog: %w", err)
	}

	if !args.Quiet {
		fmt.Printf("Cached %d materials in %d categories.\n", len(materials), len(categories))
	}
	return nil
}

// =============================================================================
// CONFIG COMMAND
// =============================================================================

// HandleConfig handles config show/set/path.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if args.JSON {
			return printJSON(cfg)
		}
		fmt.Printf("backend.url          = %s\n", cfg.Backend.URL)
		fmt.Printf("backend.timeout_secs = %d\n", cfg.Backend.TimeoutSecs)
		fmt.Printf("cache.enabled        = %t\n", cfg.Cache.Enabled)
		fmt.Printf("cache.stale_after    = %dm\n", cfg.Cache.StaleAfterMins)
		fmt.Printf("currency.fallback    = %.2f\n", cfg.Currency.EURToMADFallback)
		fmt.Printf("ui.theme             = %s\n", cfg.UI.Theme)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return errors.New("usage: parcbudget config set <key> <value>")
		}
		return configSet(args.ConfigKey, args.ConfigVal, args)

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s", args.Subcommand)
	}
}

// configSet updates one configuration key and saves the file.
func configSet(key, value string, args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch key {
	case "backend.url":
		cfg.Backend.URL = value
	case "ui.theme":
		cfg.UI.Theme = value
	case "cache.enabled":
		cfg.Cache.Enabled = value == "true" || value == "1"
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	if !args.Quiet {
		fmt.Printf("Set %s = %s\n", key, value)
	}
	return nil
}
