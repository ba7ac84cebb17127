package mcp

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("forge-mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "localhost:8095" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("FORGE_ADDR", "env-forge:1")
	fs := flag.NewFlagSet("forge-mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "env-forge:1" {
		t.Fatalf("expected env addr, got %q", cfg.Addr)
	}

	fs = flag.NewFlagSet("forge-mcp", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{"-addr", "flag-forge:2"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "flag-forge:2" {
		t.Fatalf("expected flag addr, got %q", cfg.Addr)
	}
}
