package config

import (
	"flag"
	"os"
	"os/exec"
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"FORGE_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("FORGE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestPathsFromEnvAndFlags(t *testing.T) {
	t.Setenv("FORGE_DB_PATH", "/tmp/env.db")
	t.Setenv("FORGE_SETTINGS_PATH", "env.yaml")

	var paths Paths
	if err := ParseEnv(&paths); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	fs := flag.NewFlagSet("paths", flag.ContinueOnError)
	paths.RegisterFlags(fs)
	if err := fs.Parse([]string{"-settings", "flag.yaml"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if paths.DBPath != "/tmp/env.db" {
		t.Fatalf("db path = %q, want env value", paths.DBPath)
	}
	if paths.SettingsPath != "flag.yaml" {
		t.Fatalf("settings path = %q, want flag value", paths.SettingsPath)
	}
}

func TestPathsDefault(t *testing.T) {
	var paths Paths
	if err := ParseEnv(&paths); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if paths.DBPath != "data/forge.db" {
		t.Fatalf("db path = %q, want data/forge.db", paths.DBPath)
	}
}

// TestExitfExitsWithCode1 uses the subprocess pattern because os.Exit cannot
// be intercepted in-process.
func TestExitfExitsWithCode1(t *testing.T) {
	if os.Getenv("TEST_EXITF_SUBPROCESS") == "1" {
		Exitf("fatal: %s", "something broke")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitfExitsWithCode1$")
	cmd.Env = append(os.Environ(), "TEST_EXITF_SUBPROCESS=1")

	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %d", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "fatal: something broke") {
		t.Fatalf("expected stderr to contain %q, got %q", "fatal: something broke", string(out))
	}
}
