package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/config"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/app"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/catalogio"
)

const catalogJSON = `[
  {"id": "sword", "name": "Longsword", "type": "weapon", "rarity": "common", "price": 15},
  {"id": "potion", "name": "Potion of Healing", "type": "potion", "rarity": "common", "price": 50},
  {"id": "cloak", "name": "Cloak of Elvenkind", "type": "wondrous", "rarity": "uncommon", "price": 400}
]`

func writeCatalog(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestParseConfig(t *testing.T) {
	fs := flag.NewFlagSet("forge", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-format", "json", "stock", "-seed", "3"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Command != "stock" {
		t.Fatalf("command = %q, want stock", cfg.Command)
	}
	if !reflect.DeepEqual(cfg.Args, []string{"-seed", "3"}) {
		t.Fatalf("args = %v", cfg.Args)
	}
	if cfg.Format != formatJSON {
		t.Fatalf("format = %q, want json", cfg.Format)
	}
}

func TestParseConfigReadsEnv(t *testing.T) {
	t.Setenv("FORGE_ADDR", "localhost:9090")
	t.Setenv("FORGE_DB_PATH", "/tmp/forge-env.db")
	fs := flag.NewFlagSet("forge", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"loot"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "localhost:9090" || cfg.DBPath != "/tmp/forge-env.db" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing command", args: nil, want: "command is required"},
		{name: "bad format", args: []string{"-format", "xml", "loot"}, want: "not supported"},
		{name: "addr and catalog", args: []string{"-addr", "x:1", "-catalog", "c.json", "loot"}, want: "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("forge", flag.ContinueOnError)
			fs.SetOutput(&bytes.Buffer{})
			_, err := ParseConfig(fs, tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestRunStockFromCatalogJSON(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "stock.json.zst")
	cfg := Config{
		CatalogPath: writeCatalog(t),
		Format:      formatJSON,
		OutPath:     outPath,
		Command:     "stock",
		Args:        []string{"-seed", "21", "-count", "5"},
	}

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var resp app.StockResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if resp.Seed != 21 || resp.Stock.TotalQuantity == 0 || resp.Stock.TotalQuantity > 5 {
		t.Fatalf("resp = %+v", resp)
	}

	var written app.StockResponse
	if err := catalogio.ReadResult(outPath, &written); err != nil {
		t.Fatalf("read written result: %v", err)
	}
	if !reflect.DeepEqual(written.Stock, resp.Stock) {
		t.Fatalf("written = %+v, want %+v", written.Stock, resp.Stock)
	}
}

func TestRunLootTable(t *testing.T) {
	cfg := Config{
		CatalogPath: writeCatalog(t),
		Format:      formatTable,
		Command:     "loot",
		Args:        []string{"-difficulty", "12", "-target", "horde", "-seed", "4"},
	}

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Currency:") || !strings.Contains(text, "seed 4") {
		t.Fatalf("output = %q", text)
	}
}

func TestRunStoreHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "forge.db")
	base := Config{Paths: config.Paths{DBPath: dbPath}, Format: formatJSON}

	stock := base
	stock.Command, stock.Args = "stock", []string{"-seed", "1"}
	err := run(context.Background(), stock, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "catalog pack not found") {
		t.Fatalf("error = %v, want catalog pack not found", err)
	}

	history := base
	history.Command = "history"
	var out bytes.Buffer
	if err := run(context.Background(), history, &out); err != nil {
		t.Fatalf("history: %v", err)
	}
	var page app.GenerationPage
	if err := json.Unmarshal(out.Bytes(), &page); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(page.Generations) != 0 {
		t.Fatalf("generations = %+v, want none", page.Generations)
	}
}

func TestRunMerchants(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "settings.yaml")
	raw := "merchants:\n  smith:\n    allowed_types: [weapon]\n"
	if err := os.WriteFile(settingsPath, []byte(raw), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	cfg := Config{Paths: config.Paths{SettingsPath: settingsPath}, Format: formatTable, Command: "merchants"}

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "general\nsmith\n" {
		t.Fatalf("output = %q, want general and smith", got)
	}
}

func TestRunCommandErrors(t *testing.T) {
	catalogPath := writeCatalog(t)
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "unknown", cfg: Config{CatalogPath: catalogPath, Command: "bake"}, want: "unknown command"},
		{name: "generation without id", cfg: Config{CatalogPath: catalogPath, Command: "generation"}, want: "-id is required"},
		{name: "bad flag", cfg: Config{CatalogPath: catalogPath, Command: "loot", Args: []string{"-difficulty", "x"}}, want: "loot:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.cfg, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}
}
