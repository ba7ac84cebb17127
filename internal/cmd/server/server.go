// Package server parses forge server flags and launches the relay.
package server

import (
	"context"
	"flag"

	entrypoint "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/cmd"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/config"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/discovery"
	forgeserver "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/server"
)

// Config holds forge server command configuration.
type Config struct {
	config.Paths
	Port int `env:"FORGE_PORT"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Paths.RegisterFlags(fs)
	if cfg.Port <= 0 {
		cfg.Port = discovery.GRPCPort
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The forge gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the forge gRPC relay.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		srv, err := forgeserver.NewWithPaths(discovery.ListenAddr(cfg.Port), cfg.Paths)
		if err != nil {
			return err
		}
		return srv.Serve(ctx)
	})
}
