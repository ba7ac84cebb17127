// Package forge implements the forge command line: loot and stock
// generation against a catalog file, the local store or a remote relay.
package forge

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	entrypoint "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/cmd"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/config"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/discovery"
	platformgrpc "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/grpc"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/timeouts"
	forgeservice "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/api/grpc/forge"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/app"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/catalogio"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/settings"
	forgesqlite "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/storage/sqlite"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// Config holds forge command configuration.
type Config struct {
	config.Paths
	// Addr selects a remote relay instead of local generation.
	Addr string `env:"FORGE_ADDR"`
	// CatalogPath generates from a catalog file instead of the store.
	CatalogPath string
	Format      string
	OutPath     string

	Command string
	Args    []string
}

// ParseConfig parses environment and global flags. The first positional
// argument names the subcommand; the rest are its flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Format: formatTable}
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Paths.RegisterFlags(fs)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "forge relay address; generates locally when empty")
	fs.StringVar(&cfg.CatalogPath, "catalog", "", "catalog file (.json or .json.zst) served as the default pack")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "output format: table or json")
	fs.StringVar(&cfg.OutPath, "out", "", "also write the JSON result to this file (.zst compresses)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return Config{}, errors.New("command is required: loot, stock, generation, history or merchants")
	}
	cfg.Command, cfg.Args = rest[0], rest[1:]
	switch cfg.Format {
	case formatTable, formatJSON:
	default:
		return Config{}, fmt.Errorf("format %q is not supported", cfg.Format)
	}
	if cfg.Addr != "" && cfg.CatalogPath != "" {
		return Config{}, errors.New("addr and catalog are mutually exclusive")
	}
	return cfg, nil
}

// backend is satisfied by the app service and the relay client.
type backend interface {
	GenerateLoot(ctx context.Context, req app.LootRequest) (app.LootResponse, error)
	GenerateStock(ctx context.Context, req app.StockRequest) (app.StockResponse, error)
	GetGeneration(ctx context.Context, generationID string) (app.Generation, error)
	ListGenerations(ctx context.Context, pageSize int, pageToken string) (app.GenerationPage, error)
}

// Run executes the configured subcommand and writes its result to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCLI, func(ctx context.Context) error {
		return run(ctx, cfg, out)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if cfg.Command == "merchants" {
		return listMerchants(cfg, out)
	}

	b, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	var (
		result any
		render func(io.Writer) error
	)
	switch cfg.Command {
	case "loot":
		req, err := parseLootArgs(cfg.Args)
		if err != nil {
			return err
		}
		resp, err := b.GenerateLoot(ctx, req)
		if err != nil {
			return err
		}
		result, render = resp, func(w io.Writer) error { return renderLoot(w, resp) }
	case "stock":
		req, err := parseStockArgs(cfg.Args)
		if err != nil {
			return err
		}
		resp, err := b.GenerateStock(ctx, req)
		if err != nil {
			return err
		}
		result, render = resp, func(w io.Writer) error { return renderStock(w, resp) }
	case "generation":
		generationID, err := parseGenerationArgs(cfg.Args)
		if err != nil {
			return err
		}
		resp, err := b.GetGeneration(ctx, generationID)
		if err != nil {
			return err
		}
		result, render = resp, func(w io.Writer) error { return renderGeneration(w, resp) }
	case "history":
		pageSize, pageToken, err := parseHistoryArgs(cfg.Args)
		if err != nil {
			return err
		}
		resp, err := b.ListGenerations(ctx, pageSize, pageToken)
		if err != nil {
			return err
		}
		result, render = resp, func(w io.Writer) error { return renderHistory(w, resp) }
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.OutPath != "" {
		if err := catalogio.WriteResult(cfg.OutPath, result); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	if cfg.Format == formatJSON {
		return writeJSON(out, result)
	}
	return render(out)
}

func openBackend(ctx context.Context, cfg Config) (backend, func(), error) {
	if strings.TrimSpace(cfg.Addr) != "" {
		conn, err := platformgrpc.Connect(ctx, platformgrpc.ConnectConfig{
			Addr:    discovery.RelayAddr(cfg.Addr),
			Timeout: timeouts.RelayConnect,
			Service: forgeservice.ServiceName,
		})
		if err != nil {
			return nil, nil, err
		}
		return forgeservice.NewClient(conn), func() { _ = conn.Close() }, nil
	}

	cfgSettings, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		return nil, nil, err
	}
	if path := strings.TrimSpace(cfg.CatalogPath); path != "" {
		docs, err := catalogio.Load(path)
		if err != nil {
			return nil, nil, err
		}
		return app.NewService(app.StaticCatalog{app.DefaultPack: docs}, cfgSettings), func() {}, nil
	}

	store, err := forgesqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open forge store: %w", err)
	}
	svc := app.NewService(store, cfgSettings, app.WithGenerationStore(store))
	return svc, func() { _ = store.Close() }, nil
}

func listMerchants(cfg Config, out io.Writer) error {
	cfgSettings, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		return err
	}
	names := cfgSettings.MerchantNames()
	if cfg.Format == formatJSON {
		return writeJSON(out, names)
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(out, name); err != nil {
			return err
		}
	}
	return nil
}

func parseLootArgs(args []string) (app.LootRequest, error) {
	var req app.LootRequest
	fs := flag.NewFlagSet("loot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&req.Pack, "pack", "", "catalog pack")
	fs.Float64Var(&req.Difficulty, "difficulty", 0, "encounter difficulty rating (0-30)")
	fs.StringVar(&req.Scarcity, "scarcity", "", "abundant, normal or scarce")
	fs.StringVar(&req.Target, "target", "", "pocket or horde")
	fs.Int64Var(&req.Seed, "seed", 0, "seed to replay; 0 draws a fresh one")
	if err := fs.Parse(args); err != nil {
		return app.LootRequest{}, fmt.Errorf("loot: %w", err)
	}
	return req, nil
}

func parseStockArgs(args []string) (app.StockRequest, error) {
	var req app.StockRequest
	fs := flag.NewFlagSet("stock", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&req.Pack, "pack", "", "catalog pack")
	fs.StringVar(&req.Merchant, "merchant", "", "merchant profile")
	fs.IntVar(&req.TargetCount, "count", 0, "units to stock; 0 uses the profile")
	fs.Float64Var(&req.TargetValue, "value", 0, "soft total value target; 0 uses the profile")
	fs.Int64Var(&req.Seed, "seed", 0, "seed to replay; 0 draws a fresh one")
	if err := fs.Parse(args); err != nil {
		return app.StockRequest{}, fmt.Errorf("stock: %w", err)
	}
	return req, nil
}

func parseGenerationArgs(args []string) (string, error) {
	fs := flag.NewFlagSet("generation", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	generationID := fs.String("id", "", "generation id")
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("generation: %w", err)
	}
	if strings.TrimSpace(*generationID) == "" {
		return "", errors.New("generation: -id is required")
	}
	return *generationID, nil
}

func parseHistoryArgs(args []string) (int, string, error) {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pageSize := fs.Int("page-size", 0, "generations per page")
	pageToken := fs.String("page-token", "", "token from a previous page")
	if err := fs.Parse(args); err != nil {
		return 0, "", fmt.Errorf("history: %w", err)
	}
	return *pageSize, *pageToken, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
