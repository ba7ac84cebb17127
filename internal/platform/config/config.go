// Package config loads command configuration from the environment.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// Paths locates the files shared by the forge commands.
type Paths struct {
	DBPath       string `env:"FORGE_DB_PATH" envDefault:"data/forge.db"`
	SettingsPath string `env:"FORGE_SETTINGS_PATH"`
}

// RegisterFlags binds -db-path and -settings to p, using the current values
// as defaults.
func (p *Paths) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&p.DBPath, "db-path", p.DBPath, "path to the forge SQLite database")
	fs.StringVar(&p.SettingsPath, "settings", p.SettingsPath, "path to the forge settings YAML (defaults when empty)")
}
