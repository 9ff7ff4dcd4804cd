// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"testing"
)

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"show", "--status", "approved"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("status") != "approved" {
					t.Errorf("Flag(status) = %q, want %q", p.Flag("status"), "approved")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"refresh", "--since=2026-01-01"},
			wantSub: "refresh",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("since") != "2026-01-01" {
					t.Errorf("Flag(since) = %q, want %q", p.Flag("since"), "2026-01-01")
				}
			},
		},
		{
			name:    "boolean flag",
			args:    []string{"show", "--json"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be true")
				}
			},
		},
		{
			name:    "explicit boolean false",
			args:    []string{"show", "--json=false"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be false")
				}
			},
		},
		{
			name:    "no arguments",
			args:    []string{},
			wantSub: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args)
			if p.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", p.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestArgParser_Defaults(t *testing.T) {
	p := NewArgParser([]string{"show"})

	if got := p.FlagOrDefault("format", "text"); got != "text" {
		t.Errorf("FlagOrDefault = %q, want text", got)
	}
	if got := p.FlagIntOrDefault("lines", 50); got != 50 {
		t.Errorf("FlagIntOrDefault = %d, want 50", got)
	}

	p = NewArgParser([]string{"show", "--lines", "10"})
	if got := p.FlagIntOrDefault("lines", 50); got != 10 {
		t.Errorf("FlagIntOrDefault = %d, want 10", got)
	}
}

// =============================================================================
// COMMAND PARSING TESTS
// =============================================================================

// parseWith runs Parse with a fake os.Args.
func parseWith(t *testing.T, args ...string) (Command, Args) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"parcbudget"}, args...)
	defer func() { os.Args = old }()
	return Parse()
}

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		args []string
		want Command
	}{
		{nil, CmdTUI},
		{[]string{"tui"}, CmdTUI},
		{[]string{"login"}, CmdLogin},
		{[]string{"logout"}, CmdLogout},
		{[]string{"whoami"}, CmdWhoami},
		{[]string{"me"}, CmdWhoami},
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"projects"}, CmdProjects},
		{[]string{"catalog"}, CmdCatalog},
		{[]string{"config"}, CmdConfig},
		{[]string{"version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"bogus"}, CmdHelp},
	}

	for _, tt := range tests {
		cmd, _ := parseWith(t, tt.args...)
		if cmd != tt.want {
			t.Errorf("Parse(%v) = %v, want %v", tt.args, cmd, tt.want)
		}
	}
}

func TestParse_LoginUsername(t *testing.T) {
	cmd, args := parseWith(t, "login", "amina")
	if cmd != CmdLogin {
		t.Fatalf("command = %v, want CmdLogin", cmd)
	}
	if args.Username != "amina" {
		t.Errorf("Username = %q, want amina", args.Username)
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	cmd, args := parseWith(t, "--json", "-q", "--backend", "https://b.example.com", "projects")
	if cmd != CmdProjects {
		t.Fatalf("command = %v, want CmdProjects", cmd)
	}
	if !args.JSON {
		t.Error("JSON flag should be set")
	}
	if !args.Quiet {
		t.Error("Quiet flag should be set")
	}
	if args.Backend != "https://b.example.com" {
		t.Errorf("Backend = %q", args.Backend)
	}
}

func TestParse_BackendEquals(t *testing.T) {
	_, args := parseWith(t, "--backend=https://x.example.com", "status")
	if args.Backend != "https://x.example.com" {
		t.Errorf("Backend = %q", args.Backend)
	}
}

func TestParse_ConfigSet(t *testing.T) {
	cmd, args := parseWith(t, "config", "set", "ui.theme", "light")
	if cmd != CmdConfig {
		t.Fatalf("command = %v, want CmdConfig", cmd)
	}
	if args.Subcommand != "set" {
		t.Errorf("Subcommand = %q, want set", args.Subcommand)
	}
	if args.ConfigKey != "ui.theme" || args.ConfigVal != "light" {
		t.Errorf("key/val = %q/%q, want ui.theme/light", args.ConfigKey, args.ConfigVal)
	}
}

func TestParse_ConfigDefaultsToShow(t *testing.T) {
	_, args := parseWith(t, "config")
	if args.Subcommand != "show" {
		t.Errorf("Subcommand = %q, want show", args.Subcommand)
	}
}
