// parcbudget - terminal client for the ParcBudget backend.
//
// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parcbudget/parcbudget-tui/internal/api"
	"github.com/parcbudget/parcbudget-tui/internal/auth"
	"github.com/parcbudget/parcbudget-tui/internal/cli"
	"github.com/parcbudget/parcbudget-tui/internal/config"
	"github.com/parcbudget/parcbudget-tui/internal/storage"
	"github.com/parcbudget/parcbudget-tui/internal/ui/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(args))
	case cli.CmdWhoami:
		exitOnError(cli.HandleWhoami(args))
	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args))
	case cli.CmdProjects:
		exitOnError(cli.HandleProjects(args))
	case cli.CmdCatalog:
		exitOnError(cli.HandleCatalog(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp(args)
	}
}

// exitOnError prints the error and exits non-zero.
func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the full client and runs the Bubble Tea program.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
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
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	session := auth.NewSession(client, auth.NewFileTokenStore(tokenPath))

	// The catalog cache is optional: the TUI works without it.
	var cache *storage.CatalogCache
	if cfg.Cache.Enabled {
		path := cfg.Cache.Path
		if path == "" {
			path, err = storage.DefaultCachePath()
		}
		if err == nil {
			if c, cacheErr := storage.OpenCatalogCache(path); cacheErr == nil {
				cache = c
				defer cache.Close()
			}
		}
	}

	model := app.NewModel(cfg, client, session, cache)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Reload display settings live when the config file changes.
	if path, err := config.ConfigPathTOML(); err == nil {
		if watcher, err := config.NewWatcher(path, func(next *config.Config) {
			program.Send(app.ConfigReloadedMsg{Config: next})
		}); err == nil {
			if watcher.Watch() == nil {
				defer watcher.Close()
			} else {
				watcher.Close()
			}
		}
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
