package app

import (
	"context"
	"strings"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/catalog"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/storage"
)

// CatalogSource supplies catalog documents by pack.
type CatalogSource interface {
	ListCatalogDocuments(ctx context.Context, pack string) ([]catalog.Document, error)
}

// StaticCatalog serves in-memory packs, e.g. a catalog file loaded by a CLI.
type StaticCatalog map[string][]catalog.Document

// ListCatalogDocuments returns the documents of pack.
func (c StaticCatalog) ListCatalogDocuments(ctx context.Context, pack string) ([]catalog.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs, ok := c[strings.TrimSpace(pack)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return docs, nil
}
