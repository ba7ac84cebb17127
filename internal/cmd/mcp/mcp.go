// Package mcp parses MCP command flags and serves the forge tools on stdio.
package mcp

import (
	"context"
	"flag"
	"log"

	entrypoint "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/cmd"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/discovery"
	mcpservice "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	Addr string `env:"FORGE_ADDR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", discovery.RelayAddr(cfg.Addr), "forge relay address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{GRPCAddr: cfg.Addr, Logf: log.Printf})
	})
}
