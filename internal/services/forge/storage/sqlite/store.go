// Package sqlite provides the SQLite-backed forge storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	sqlitemigrate "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/storage/sqlitemigrate"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/catalog"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/storage"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/storage/sqlite/migrations"
)

// Store persists catalogs and generations in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// PutCatalogDocuments replaces the documents stored for pack.
func (s *Store) PutCatalogDocuments(ctx context.Context, pack string, docs []catalog.Document) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	pack = strings.TrimSpace(pack)
	if pack == "" {
		return fmt.Errorf("pack is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_documents WHERE pack = ?`, pack); err != nil {
		return fmt.Errorf("clear catalog pack: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO catalog_documents (pack, position, doc_id, name, doc_json, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare catalog insert: %w", err)
	}
	defer stmt.Close()

	updatedAt := toMillis(s.now())
	for i, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode catalog document %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, pack, i, doc.Key(), doc.DisplayName(), string(raw), updatedAt); err != nil {
			return fmt.Errorf("insert catalog document %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog import: %w", err)
	}
	return nil
}

// ListCatalogDocuments returns the documents of pack in import order.
func (s *Store) ListCatalogDocuments(ctx context.Context, pack string) ([]catalog.Document, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	pack = strings.TrimSpace(pack)
	if pack == "" {
		return nil, fmt.Errorf("pack is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT doc_json FROM catalog_documents WHERE pack = ? ORDER BY position ASC`, pack)
	if err != nil {
		return nil, fmt.Errorf("list catalog documents: %w", err)
	}
	defer rows.Close()

	docs := []catalog.Document{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("list catalog documents: %w", err)
		}
		var doc catalog.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("decode catalog document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list catalog documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, storage.ErrNotFound
	}
	return docs, nil
}

// ListCatalogPacks summarizes the stored packs in name order.
func (s *Store) ListCatalogPacks(ctx context.Context) ([]storage.CatalogPack, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT pack, COUNT(*), MAX(updated_at)
		   FROM catalog_documents
		  GROUP BY pack
		  ORDER BY pack ASC`)
	if err != nil {
		return nil, fmt.Errorf("list catalog packs: %w", err)
	}
	defer rows.Close()

	var packs []storage.CatalogPack
	for rows.Next() {
		var p storage.CatalogPack
		var updatedAt int64
		if err := rows.Scan(&p.Pack, &p.Documents, &updatedAt); err != nil {
			return nil, fmt.Errorf("list catalog packs: %w", err)
		}
		p.UpdatedAt = fromMillis(updatedAt)
		packs = append(packs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list catalog packs: %w", err)
	}
	return packs, nil
}

// PutGeneration inserts one generation snapshot.
func (s *Store) PutGeneration(ctx context.Context, g storage.Generation) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id := strings.TrimSpace(g.ID)
	if id == "" {
		return fmt.Errorf("generation id is required")
	}
	switch g.Kind {
	case storage.GenerationLoot, storage.GenerationStock:
	default:
		return fmt.Errorf("unknown generation kind %q", g.Kind)
	}
	createdAt := g.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO generations (
		   id, kind, pack, merchant, seed, request_json, result_json, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		string(g.Kind),
		strings.TrimSpace(g.Pack),
		strings.TrimSpace(g.Merchant),
		g.Seed,
		string(g.Request),
		string(g.Result),
		toMillis(createdAt),
	)
	if err != nil {
		if isGenerationUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put generation: %w", err)
	}
	return nil
}

const generationColumns = `id, kind, pack, merchant, seed, request_json, result_json, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (storage.Generation, error) {
	var g storage.Generation
	var kind, request, result string
	var createdAt int64
	if err := row.Scan(&g.ID, &kind, &g.Pack, &g.Merchant, &g.Seed, &request, &result, &createdAt); err != nil {
		return storage.Generation{}, err
	}
	g.Kind = storage.GenerationKind(kind)
	g.Request = []byte(request)
	g.Result = []byte(result)
	g.CreatedAt = fromMillis(createdAt)
	return g, nil
}

// GetGeneration returns one generation by ID.
func (s *Store) GetGeneration(ctx context.Context, id string) (storage.Generation, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Generation{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Generation{}, fmt.Errorf("generation id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE id = ?`, id)
	g, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Generation{}, storage.ErrNotFound
		}
		return storage.Generation{}, fmt.Errorf("get generation: %w", err)
	}
	return g, nil
}

// ListGenerations returns one page of generations ordered by ID.
func (s *Store) ListGenerations(ctx context.Context, pageSize int, pageToken string) (storage.GenerationPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.GenerationPage{}, err
	}
	if pageSize <= 0 {
		return storage.GenerationPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+generationColumns+`
		   FROM generations
		  WHERE id > ?
		  ORDER BY id ASC
		  LIMIT ?`,
		pageToken,
		pageSize+1,
	)
	if err != nil {
		return storage.GenerationPage{}, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	page := storage.GenerationPage{Generations: make([]storage.Generation, 0, pageSize)}
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return storage.GenerationPage{}, fmt.Errorf("list generations: %w", err)
		}
		page.Generations = append(page.Generations, g)
	}
	if err := rows.Err(); err != nil {
		return storage.GenerationPage{}, fmt.Errorf("list generations: %w", err)
	}
	if len(page.Generations) > pageSize {
		page.NextPageToken = page.Generations[pageSize-1].ID
		page.Generations = page.Generations[:pageSize]
	}
	return page, nil
}

func isGenerationUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "generations.id")
}

var (
	_ storage.CatalogStore    = (*Store)(nil)
	_ storage.GenerationStore = (*Store)(nil)
)
