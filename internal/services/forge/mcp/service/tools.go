package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/timeouts"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/app"
)

// Backend runs generations for the MCP tools. Both the in-process app
// service and the gRPC relay client satisfy it.
type Backend interface {
	GenerateLoot(ctx context.Context, req app.LootRequest) (app.LootResponse, error)
	GenerateStock(ctx context.Context, req app.StockRequest) (app.StockResponse, error)
	GetGeneration(ctx context.Context, generationID string) (app.Generation, error)
}

// LootInput is the MCP tool input for loot generation.
type LootInput struct {
	Pack       string  `json:"pack,omitempty" jsonschema:"catalog pack name; defaults to the default pack"`
	Difficulty float64 `json:"difficulty" jsonschema:"encounter difficulty rating, clamped to 0..30"`
	Scarcity   string  `json:"scarcity,omitempty" jsonschema:"scarcity: abundant, normal or scarce"`
	Target     string  `json:"target,omitempty" jsonschema:"treasure size: pocket or horde"`
	Seed       int64   `json:"seed,omitempty" jsonschema:"seed to replay a previous generation"`
}

// LootItem is one aggregated item in a loot result.
type LootItem struct {
	ID       string `json:"id" jsonschema:"catalog item id"`
	Name     string `json:"name" jsonschema:"display name"`
	Quantity int    `json:"quantity" jsonschema:"number of copies"`
}

// LootResult is the MCP tool output for loot generation.
type LootResult struct {
	GenerationID string     `json:"generation_id,omitempty" jsonschema:"stored generation id"`
	Pack         string     `json:"pack" jsonschema:"catalog pack used"`
	Seed         int64      `json:"seed" jsonschema:"seed used; pass it back to replay"`
	Currency     int        `json:"currency" jsonschema:"suggested coin amount"`
	Items        []LootItem `json:"items" jsonschema:"suggested items"`
}

// StockInput is the MCP tool input for merchant stock generation.
type StockInput struct {
	Pack        string  `json:"pack,omitempty" jsonschema:"catalog pack name; defaults to the default pack"`
	Merchant    string  `json:"merchant,omitempty" jsonschema:"merchant profile; defaults to general"`
	TargetCount int     `json:"target_count,omitempty" jsonschema:"override for the number of units to stock"`
	TargetValue float64 `json:"target_value,omitempty" jsonschema:"override for the soft total value target of the whole stock"`
	Seed        int64   `json:"seed,omitempty" jsonschema:"seed to replay a previous generation"`
}

// StockRow is one stocked entry.
type StockRow struct {
	ID       string  `json:"id" jsonschema:"catalog item id"`
	Name     string  `json:"name" jsonschema:"display name"`
	Type     string  `json:"type,omitempty" jsonschema:"item type"`
	Rarity   string  `json:"rarity" jsonschema:"rarity bucket"`
	Value    float64 `json:"value" jsonschema:"unit value"`
	Curated  bool    `json:"curated" jsonschema:"whether the merchant always carries it"`
	Quantity int     `json:"quantity" jsonschema:"stack size"`
}

// StockResult is the MCP tool output for merchant stock generation.
type StockResult struct {
	GenerationID  string     `json:"generation_id,omitempty" jsonschema:"stored generation id"`
	Pack          string     `json:"pack" jsonschema:"catalog pack used"`
	Merchant      string     `json:"merchant" jsonschema:"merchant profile used"`
	Seed          int64      `json:"seed" jsonschema:"seed used; pass it back to replay"`
	TotalQuantity int        `json:"total_quantity" jsonschema:"units stocked"`
	TotalValue    float64    `json:"total_value" jsonschema:"sum of unit value times quantity"`
	Rows          []StockRow `json:"rows" jsonschema:"stocked entries in selection order"`
	ScriptError   string     `json:"script_error,omitempty" jsonschema:"merchant script failure; affected entries used default weights"`
}

// GenerationInput names a stored generation.
type GenerationInput struct {
	GenerationID string `json:"generation_id" jsonschema:"generation id returned by a generate tool"`
}

// GenerationResult is a stored generation.
type GenerationResult struct {
	ID        string         `json:"id" jsonschema:"generation id"`
	Kind      string         `json:"kind" jsonschema:"loot or stock"`
	Pack      string         `json:"pack" jsonschema:"catalog pack used"`
	Merchant  string         `json:"merchant,omitempty" jsonschema:"merchant profile for stock generations"`
	Seed      int64          `json:"seed" jsonschema:"seed used"`
	CreatedAt string         `json:"created_at" jsonschema:"RFC3339 creation time"`
	Request   map[string]any `json:"request" jsonschema:"normalized request"`
	Result    map[string]any `json:"result" jsonschema:"generation output"`
}

// GenerateLootTool defines the MCP tool schema for loot generation.
func GenerateLootTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "forge_generate_loot",
		Description: "Suggests coins and catalog items for a defeated encounter",
	}
}

// GenerateStockTool defines the MCP tool schema for merchant stock.
func GenerateStockTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "forge_generate_stock",
		Description: "Selects a merchant inventory from a catalog pack",
	}
}

// GetGenerationTool defines the MCP tool schema for generation lookup.
func GetGenerationTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "forge_get_generation",
		Description: "Returns a stored loot or stock generation",
	}
}

// GenerateLootHandler runs loot generation through backend.
func GenerateLootHandler(backend Backend) mcp.ToolHandlerFor[LootInput, LootResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LootInput) (*mcp.CallToolResult, LootResult, error) {
		ctx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		resp, err := backend.GenerateLoot(ctx, app.LootRequest{
			Pack:       input.Pack,
			Difficulty: input.Difficulty,
			Scarcity:   input.Scarcity,
			Target:     input.Target,
			Seed:       input.Seed,
		})
		if err != nil {
			return nil, LootResult{}, fmt.Errorf("generate loot: %w", err)
		}

		out := LootResult{
			GenerationID: resp.GenerationID,
			Pack:         resp.Pack,
			Seed:         resp.Seed,
			Currency:     resp.Loot.Currency,
			Items:        make([]LootItem, 0, len(resp.Loot.Items)),
		}
		for _, entry := range resp.Loot.Items {
			out.Items = append(out.Items, LootItem{ID: entry.ID, Name: entry.Name, Quantity: entry.Quantity})
		}
		return nil, out, nil
	}
}

// GenerateStockHandler runs stock generation through backend.
func GenerateStockHandler(backend Backend) mcp.ToolHandlerFor[StockInput, StockResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StockInput) (*mcp.CallToolResult, StockResult, error) {
		ctx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		resp, err := backend.GenerateStock(ctx, app.StockRequest{
			Pack:        input.Pack,
			Merchant:    input.Merchant,
			TargetCount: input.TargetCount,
			TargetValue: input.TargetValue,
			Seed:        input.Seed,
		})
		if err != nil {
			return nil, StockResult{}, fmt.Errorf("generate stock: %w", err)
		}

		out := StockResult{
			GenerationID:  resp.GenerationID,
			Pack:          resp.Pack,
			Merchant:      resp.Merchant,
			Seed:          resp.Seed,
			TotalQuantity: resp.Stock.TotalQuantity,
			TotalValue:    resp.Stock.TotalValue,
			Rows:          make([]StockRow, 0, len(resp.Stock.Rows)),
			ScriptError:   resp.ScriptError,
		}
		for _, row := range resp.Stock.Rows {
			out.Rows = append(out.Rows, StockRow{
				ID:       row.ID,
				Name:     row.Name,
				Type:     row.Type,
				Rarity:   string(row.Rarity),
				Value:    row.Value,
				Curated:  row.Curated,
				Quantity: row.Quantity,
			})
		}
		return nil, out, nil
	}
}

// GetGenerationHandler looks up a stored generation through backend.
func GetGenerationHandler(backend Backend) mcp.ToolHandlerFor[GenerationInput, GenerationResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GenerationInput) (*mcp.CallToolResult, GenerationResult, error) {
		ctx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		g, err := backend.GetGeneration(ctx, input.GenerationID)
		if err != nil {
			return nil, GenerationResult{}, fmt.Errorf("get generation: %w", err)
		}

		out := GenerationResult{
			ID:        g.ID,
			Kind:      g.Kind,
			Pack:      g.Pack,
			Merchant:  g.Merchant,
			Seed:      g.Seed,
			CreatedAt: g.CreatedAt.UTC().Format(time.RFC3339),
			Request:   map[string]any{},
			Result:    map[string]any{},
		}
		if err := decodeObject(g.Request, &out.Request); err != nil {
			return nil, GenerationResult{}, fmt.Errorf("decode generation request: %w", err)
		}
		if err := decodeObject(g.Result, &out.Result); err != nil {
			return nil, GenerationResult{}, fmt.Errorf("decode generation result: %w", err)
		}
		return nil, out, nil
	}
}

func decodeObject(raw json.RawMessage, out *map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func registerTools(server *mcp.Server, backend Backend) {
	mcp.AddTool(server, GenerateLootTool(), GenerateLootHandler(backend))
	mcp.AddTool(server, GenerateStockTool(), GenerateStockHandler(backend))
	mcp.AddTool(server, GetGenerationTool(), GetGenerationHandler(backend))
}
