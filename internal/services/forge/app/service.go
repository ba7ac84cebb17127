// Package app runs the selection engine for callers: it resolves catalogs
// and settings, seeds randomness, traces and persists each generation.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/errors"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/id"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/otel"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/pagination"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/random"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/catalog"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/loot"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/script"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/stock"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/settings"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/storage"
)

// DefaultPack is used when a request names no pack.
const DefaultPack = "default"

// Service generates loot and stock. It is safe for concurrent use: every call
// builds its own RNG and script state.
type Service struct {
	catalogs    CatalogSource
	generations storage.GenerationStore
	settings    settings.Settings
	tracer      trace.Tracer
	newID       func() (string, error)
	clock       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithGenerationStore persists every generation to store.
func WithGenerationStore(store storage.GenerationStore) Option {
	return func(s *Service) {
		s.generations = store
	}
}

// WithClock replaces the time source used for snapshots.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTracer replaces the tracer used for generation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithIDGenerator replaces the generation ID source.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService creates a service reading catalogs from catalogs.
func NewService(catalogs CatalogSource, cfg settings.Settings, opts ...Option) *Service {
	cfg.Normalize()
	s := &Service{
		catalogs: catalogs,
		settings: cfg,
		tracer:   otel.Tracer(),
		newID:    id.NewID,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the normalized settings the service runs with.
func (s *Service) Settings() settings.Settings {
	return s.settings
}

// LootRequest asks for suggested treasure.
type LootRequest struct {
	Pack       string  `json:"pack,omitempty"`
	Difficulty float64 `json:"difficulty"`
	Scarcity   string  `json:"scarcity,omitempty"`
	Target     string  `json:"target,omitempty"`
	// Seed replays a previous generation. Zero draws a fresh seed.
	Seed int64 `json:"seed,omitempty"`
}

// LootResponse is a loot generation.
type LootResponse struct {
	GenerationID string      `json:"generation_id,omitempty"`
	Pack         string      `json:"pack"`
	Seed         int64       `json:"seed"`
	Input        loot.Input  `json:"input"`
	Loot         loot.Output `json:"loot"`
}

// GenerateLoot suggests treasure from the requested pack.
func (s *Service) GenerateLoot(ctx context.Context, req LootRequest) (resp LootResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "forge.GenerateLoot")
	defer func() { endSpan(span, err) }()

	pack := packName(req.Pack)
	docs, err := s.catalog(ctx, pack)
	if err != nil {
		return LootResponse{}, err
	}
	rng, seed, err := random.NewSeeded(req.Seed)
	if err != nil {
		return LootResponse{}, apperrors.Wrap(apperrors.CodeSeedUnavailable, "seed generation", err)
	}

	in := loot.Input{
		Difficulty: loot.ClampDifficulty(req.Difficulty),
		Scarcity:   loot.ParseScarcity(req.Scarcity),
		Target:     loot.ParseTarget(req.Target),
	}
	span.SetAttributes(
		attribute.String("forge.pack", pack),
		attribute.Int64("forge.seed", seed),
		attribute.Float64("forge.difficulty", in.Difficulty),
		attribute.String("forge.target", string(in.Target)),
	)

	out := loot.Generate(in, catalog.Items(docs), s.settings.Loot, loot.Strategy{RNG: rng})
	span.SetAttributes(
		attribute.Int("forge.currency", out.Currency),
		attribute.Int("forge.items", len(out.Items)),
	)

	resp = LootResponse{Pack: pack, Seed: seed, Input: in, Loot: out}
	req.Pack, req.Seed = pack, seed
	resp.GenerationID, err = s.persist(ctx, storage.GenerationLoot, pack, "", seed, req, resp)
	if err != nil {
		return LootResponse{}, err
	}
	return resp, nil
}

// StockRequest asks for a merchant inventory.
type StockRequest struct {
	Pack     string `json:"pack,omitempty"`
	Merchant string `json:"merchant,omitempty"`
	// TargetCount and TargetValue override the merchant profile when positive.
	TargetCount int     `json:"target_count,omitempty"`
	TargetValue float64 `json:"target_value,omitempty"`
	Seed        int64   `json:"seed,omitempty"`
}

// StockResponse is a stock generation.
type StockResponse struct {
	GenerationID string        `json:"generation_id,omitempty"`
	Pack         string        `json:"pack"`
	Merchant     string        `json:"merchant"`
	Seed         int64         `json:"seed"`
	Request      stock.Request `json:"request"`
	Stock        stock.Result  `json:"stock"`
	// ScriptError reports a merchant script failure; the affected candidates
	// were scored with the default weights.
	ScriptError string `json:"script_error,omitempty"`
}

// GenerateStock selects an inventory for the requested merchant.
func (s *Service) GenerateStock(ctx context.Context, req StockRequest) (resp StockResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "forge.GenerateStock")
	defer func() { endSpan(span, err) }()

	name := strings.TrimSpace(req.Merchant)
	if name == "" {
		name = settings.DefaultMerchant
	}
	merchant, ok := s.settings.Merchant(name)
	if !ok {
		return StockResponse{}, apperrors.New(apperrors.CodeMerchantNotFound, "merchant not found").WithMetadata("merchant", name)
	}

	pack := packName(req.Pack)
	docs, err := s.catalog(ctx, pack)
	if err != nil {
		return StockResponse{}, err
	}

	candidates, err := stock.Build(docs, merchant.SelectionConfig)
	if err != nil {
		return StockResponse{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "build candidates", err).WithMetadata("merchant", name)
	}

	strategy := stock.Strategy{}
	var evaluator *script.Evaluator
	if path := strings.TrimSpace(merchant.Script); path != "" {
		evaluator, err = script.Load(path)
		if err != nil {
			return StockResponse{}, apperrors.Wrap(apperrors.CodeScriptInvalid, "load merchant script", err).WithMetadata("merchant", name)
		}
		strategy.Evaluator = evaluator
	}

	rng, seed, err := random.NewSeeded(req.Seed)
	if err != nil {
		return StockResponse{}, apperrors.Wrap(apperrors.CodeSeedUnavailable, "seed generation", err)
	}
	strategy.RNG = rng

	selection := merchant.Request()
	if req.TargetCount > 0 {
		selection.TargetCount = req.TargetCount
	}
	if req.TargetValue > 0 {
		selection.TargetValue = req.TargetValue
	}
	selection = selection.Normalized()

	span.SetAttributes(
		attribute.String("forge.pack", pack),
		attribute.String("forge.merchant", name),
		attribute.Int64("forge.seed", seed),
		attribute.Int("forge.candidates", len(candidates)),
		attribute.Int("forge.target_count", selection.TargetCount),
	)

	result := stock.Select(candidates, selection, strategy)
	span.SetAttributes(
		attribute.Int("forge.units", result.TotalQuantity),
		attribute.Float64("forge.total_value", result.TotalValue),
	)

	resp = StockResponse{Pack: pack, Merchant: name, Seed: seed, Request: selection, Stock: result}
	if evaluator != nil {
		if scriptErr := evaluator.Err(); scriptErr != nil {
			span.RecordError(scriptErr)
			span.SetAttributes(attribute.Bool("forge.script_fallback", true))
			log.Printf("forge: merchant %s script fell back to default scores: %v", name, scriptErr)
			resp.ScriptError = scriptErr.Error()
		}
	}
	req.Pack, req.Merchant, req.Seed = pack, name, seed
	resp.GenerationID, err = s.persist(ctx, storage.GenerationStock, pack, name, seed, req, resp)
	if err != nil {
		return StockResponse{}, err
	}
	return resp, nil
}

// Generation is a stored generation with its JSON payloads.
type Generation struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Pack      string          `json:"pack"`
	Merchant  string          `json:"merchant,omitempty"`
	Seed      int64           `json:"seed"`
	Request   json.RawMessage `json:"request"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// GetGeneration returns a stored generation.
func (s *Service) GetGeneration(ctx context.Context, generationID string) (Generation, error) {
	if s.generations == nil {
		return Generation{}, apperrors.New(apperrors.CodeNotFound, "generation storage is not configured")
	}
	generationID = strings.TrimSpace(generationID)
	if generationID == "" {
		return Generation{}, apperrors.New(apperrors.CodeRequestInvalid, "generation id is required")
	}
	g, err := s.generations.GetGeneration(ctx, generationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Generation{}, apperrors.Wrap(apperrors.CodeNotFound, "generation not found", err).WithMetadata("generation_id", generationID)
		}
		return Generation{}, apperrors.Wrap(apperrors.CodeStorageFailure, "get generation", err)
	}
	return generationFromStorage(g), nil
}

// GenerationPage is one page of stored generations ordered by ID.
type GenerationPage struct {
	Generations   []Generation `json:"generations"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

// ListGenerations pages through stored generations.
func (s *Service) ListGenerations(ctx context.Context, pageSize int, pageToken string) (GenerationPage, error) {
	if s.generations == nil {
		return GenerationPage{}, apperrors.New(apperrors.CodeNotFound, "generation storage is not configured")
	}
	page, err := s.generations.ListGenerations(ctx, pagination.ClampPageSize(pageSize, pagination.Generations), pagination.NormalizeToken(pageToken))
	if err != nil {
		return GenerationPage{}, apperrors.Wrap(apperrors.CodeStorageFailure, "list generations", err)
	}
	out := GenerationPage{
		Generations:   make([]Generation, 0, len(page.Generations)),
		NextPageToken: page.NextPageToken,
	}
	for _, g := range page.Generations {
		out.Generations = append(out.Generations, generationFromStorage(g))
	}
	return out, nil
}

func generationFromStorage(g storage.Generation) Generation {
	return Generation{
		ID:        g.ID,
		Kind:      string(g.Kind),
		Pack:      g.Pack,
		Merchant:  g.Merchant,
		Seed:      g.Seed,
		Request:   json.RawMessage(g.Request),
		Result:    json.RawMessage(g.Result),
		CreatedAt: g.CreatedAt,
	}
}

func (s *Service) catalog(ctx context.Context, pack string) ([]catalog.Document, error) {
	if s.catalogs == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "catalog source is not configured")
	}
	docs, err := s.catalogs.ListCatalogDocuments(ctx, pack)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.CodeNotFound, "catalog pack not found", err).WithMetadata("pack", pack)
		}
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "load catalog", err)
	}
	return docs, nil
}

// persist stores a snapshot when a generation store is configured and
// returns its ID.
func (s *Service) persist(ctx context.Context, kind storage.GenerationKind, pack, merchant string, seed int64, req, result any) (string, error) {
	if s.generations == nil {
		return "", nil
	}
	generationID, err := s.newID()
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageFailure, "generation id", err)
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode generation request: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode generation result: %w", err)
	}

	err = s.generations.PutGeneration(ctx, storage.Generation{
		ID:        generationID,
		Kind:      kind,
		Pack:      pack,
		Merchant:  merchant,
		Seed:      seed,
		Request:   reqJSON,
		Result:    resultJSON,
		CreatedAt: s.clock().UTC(),
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageFailure, "save generation", err)
	}
	return generationID, nil
}

func packName(pack string) string {
	pack = strings.TrimSpace(pack)
	if pack == "" {
		return DefaultPack
	}
	return pack
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}
