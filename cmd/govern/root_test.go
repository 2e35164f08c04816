package main

import (
	"errors"
	"fmt"
	"testing"

	"council-governance/internal/governance"
)

func TestAllSubcommandsRegistered(t *testing.T) {
	expectedCmds := []string{
		"proposal",
		"vote",
		"voter",
		"config",
		"council",
		"strategy",
		"stats",
		"run",
		"version",
	}

	registered := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range expectedCmds {
		if !registered[name] {
			t.Errorf("expected subcommand %q not registered on rootCmd", name)
		}
	}
}

func TestCodeForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"plain", errors.New("boom"), exitGeneralError},
		{"validation", governance.ErrValidation, exitValidation},
		{"wrapped validation", fmt.Errorf("create: %w", governance.ErrValidation), exitValidation},
		{"state conflict", fmt.Errorf("vote: %w", governance.ErrStateConflict), exitPrecondition},
		{"unauthorized", fmt.Errorf("cancel: %w", governance.ErrUnauthorized), exitUnauthorized},
		{"not found", fmt.Errorf("show: %w", governance.ErrNotFound), exitNotFound},
		{"silenced keeps class", silentErr{fmt.Errorf("vote: %w", governance.ErrStateConflict)}, exitPrecondition},
	}
	for _, c := range cases {
		if got := codeForError(c.err); got != c.want {
			t.Errorf("%s: codeForError() = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestLoadCfgFlagOverrides(t *testing.T) {
	origDB := flagDB
	origRPC := flagRPC
	origDebug := flagDebug
	defer func() {
		flagDB = origDB
		flagRPC = origRPC
		flagDebug = origDebug
	}()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RPC_URL", "")

	flagDB = "postgres://gov:secret@db:5432/council"
	flagRPC = "http://flagged:26657"
	flagDebug = true

	cfg := loadCfg()
	if cfg.DBDialect != "postgres" {
		t.Errorf("DBDialect = %q, want postgres from --db", cfg.DBDialect)
	}
	if cfg.RPCURL != "http://flagged:26657" {
		t.Errorf("RPCURL = %q, want --rpc override", cfg.RPCURL)
	}
	if !cfg.Debug {
		t.Error("--debug not applied to config")
	}
}

func TestLoadCfgRejectsBadDatabaseFlag(t *testing.T) {
	origDB := flagDB
	origRPC := flagRPC
	origDebug := flagDebug
	defer func() {
		flagDB = origDB
		flagRPC = origRPC
		flagDebug = origDebug
	}()
	t.Setenv("DATABASE_URL", "")
	flagDB = "mysql://u:p@h:3306/db"
	flagRPC = ""
	flagDebug = false

	cfg := loadCfg()
	if cfg.DBDialect != "" {
		t.Errorf("DBDialect = %q, want empty after invalid --db", cfg.DBDialect)
	}
}

func TestRenderFormats(t *testing.T) {
	orig := flagOutput
	defer func() { flagOutput = orig }()

	payload := map[string]string{"status": "active"}

	for _, format := range []string{"text", ""} {
		flagOutput = format
		called := false
		if err := render(payload, func() { called = true }); err != nil {
			t.Fatalf("%q render: %v", format, err)
		}
		if !called {
			t.Errorf("%q render did not invoke the text callback", format)
		}
	}

	for _, format := range []string{"json", "yaml"} {
		flagOutput = format
		called := false
		if err := render(payload, func() { called = true }); err != nil {
			t.Errorf("%s render: %v", format, err)
		}
		if called {
			t.Errorf("%s render invoked the text callback", format)
		}
	}

	flagOutput = "xml"
	if err := render(payload, func() {}); err == nil {
		t.Error("invalid --output value accepted")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a longer proposal title", 10, "a longe..."},
		{"abc", 2, "ab"},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.max); got != c.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
	}
}

func TestFmtTime(t *testing.T) {
	if got := fmtTime(0); got != "-" {
		t.Errorf("fmtTime(0) = %q, want -", got)
	}
	if got := fmtTime(1700000000); got != "2023-11-14 22:13:20" {
		t.Errorf("fmtTime(1700000000) = %q", got)
	}
}
