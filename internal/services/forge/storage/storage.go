// Package storage defines persistence contracts for catalogs and generation
// snapshots.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/catalog"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// CatalogPack summarizes one stored catalog.
type CatalogPack struct {
	Pack      string
	Documents int
	UpdatedAt time.Time
}

// CatalogStore persists catalog documents grouped into named packs.
type CatalogStore interface {
	// PutCatalogDocuments replaces the documents of pack, keeping their order.
	PutCatalogDocuments(ctx context.Context, pack string, docs []catalog.Document) error
	// ListCatalogDocuments returns the documents of pack in stored order, or
	// ErrNotFound when the pack is unknown.
	ListCatalogDocuments(ctx context.Context, pack string) ([]catalog.Document, error)
	ListCatalogPacks(ctx context.Context) ([]CatalogPack, error)
}

// GenerationKind names the engine that produced a generation.
type GenerationKind string

const (
	GenerationLoot  GenerationKind = "loot"
	GenerationStock GenerationKind = "stock"
)

// Generation is a persisted engine run. Request and Result hold JSON so a
// run can be replayed from its seed and audited later.
type Generation struct {
	ID        string
	Kind      GenerationKind
	Pack      string
	Merchant  string
	Seed      int64
	Request   []byte
	Result    []byte
	CreatedAt time.Time
}

// GenerationPage stores one page of generations.
type GenerationPage struct {
	Generations   []Generation
	NextPageToken string
}

// GenerationStore persists generation snapshots.
type GenerationStore interface {
	PutGeneration(ctx context.Context, g Generation) error
	GetGeneration(ctx context.Context, id string) (Generation, error)
	ListGenerations(ctx context.Context, pageSize int, pageToken string) (GenerationPage, error)
}
