// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// commands of the parcbudget client.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdStatus
	CmdProjects
	CmdCatalog
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Backend string // --backend overrides the configured backend URL

	// Command-specific
	Username   string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after global flag parsing
	Raw []string
}

const usageText = `parcbudget - terminal client for the ParcBudget backend

ParcBudget tracks IT infrastructure projects and their material budgets
(EUR supplier prices, MAD reporting) against a central REST backend.

Usage:
  parcbudget                    Start the TUI (default)
  parcbudget login [user]       Sign in and store the session token
  parcbudget logout             Sign out and revoke the stored token
  parcbudget whoami             Show the logged-in user
  parcbudget status, s          Show backend and session status
  parcbudget projects           List projects
  parcbudget catalog [show|refresh]
                                Manage the local material catalog cache
  parcbudget config [show|set|path]
                                Configuration management
  parcbudget version            Show version information
  parcbudget help               Show this help

Global flags:
  --backend URL                 Override the configured backend URL
  --json                        Machine-readable output
  -q, --quiet                   Suppress informational output
  -v, --verbose                 Verbose output

Config Commands:
  parcbudget config show        Print the active configuration
  parcbudget config set K V     Set a configuration value
                                (backend.url, ui.theme, cache.enabled)
  parcbudget config path        Print the config file location

Catalog Commands:
  parcbudget catalog show       List cached materials by category
  parcbudget catalog refresh    Refetch the catalog from the backend

Examples:
  parcbudget login amina
  parcbudget projects --json
  parcbudget config set backend.url https://budget.example.com
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	// No arguments: start the TUI.
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "login":
		if len(remaining) > 0 {
			parsedArgs.Username = remaining[0]
		}
		return CmdLogin, parsedArgs

	case "logout":
		return CmdLogout, parsedArgs

	case "whoami", "me":
		return CmdWhoami, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "projects", "p":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdProjects, parsedArgs

	case "catalog":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdCatalog, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version", "-V":
		return CmdVersion, parsedArgs

	case "help", "--help", "-h":
		return CmdHelp, parsedArgs

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts global flags, returning the remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--backend":
			if i+1 < len(args) {
				i++
				parsedArgs.Backend = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--backend=") {
				parsedArgs.Backend = strings.TrimPrefix(arg, "--backend=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseConfigArgs parses config command arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "show"
		return
	}

	args.Subcommand = strings.ToLower(remaining[0])
	if args.Subcommand == "set" && len(remaining) >= 3 {
		args.ConfigKey = remaining[1]
		args.ConfigVal = remaining[2]
	}
}

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// HandleHelp handles the help command.
func HandleHelp(args Args) {
	PrintUsage()
}

// HandleVersion handles the version command.
func HandleVersion(args Args) {
	if args.JSON {
		fmt.Printf(`{"version":%q,"commit":%q,"built":%q,"go":%q,"platform":"%s/%s"}`+"\n",
			Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return
	}
	fmt.Printf("parcbudget %s\n", Version)
	if args.Verbose {
		fmt.Printf("  commit:   %s\n", GitCommit)
		fmt.Printf("  built:    %s\n", BuildDate)
		fmt.Printf("  go:       %s\n", runtime.Version())
		fmt.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	}
}
