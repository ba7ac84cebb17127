package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/catalog"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestCatalogDocumentsRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	weight := 2.5
	docs := []catalog.Document{
		{ID: "sword", Name: "Longsword", Type: "weapon", Rarity: "common", Price: 15, Tags: []string{"martial"}},
		{ID: "potion", Name: "Potion of Healing", Rarity: "common", Price: 50, Weight: &weight, Keywords: []string{"healing"}},
		{ID: "", Name: "Keyless"},
	}
	if err := store.PutCatalogDocuments(context.Background(), "srd", docs); err != nil {
		t.Fatalf("put catalog documents: %v", err)
	}

	got, err := store.ListCatalogDocuments(context.Background(), "srd")
	if err != nil {
		t.Fatalf("list catalog documents: %v", err)
	}
	if !reflect.DeepEqual(got, docs) {
		t.Fatalf("documents = %+v, want %+v", got, docs)
	}
}

func TestPutCatalogDocumentsReplacesPack(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.PutCatalogDocuments(ctx, "srd", []catalog.Document{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if err := store.PutCatalogDocuments(ctx, "homebrew", []catalog.Document{{ID: "h", Name: "H"}}); err != nil {
		t.Fatalf("put homebrew: %v", err)
	}
	if err := store.PutCatalogDocuments(ctx, "srd", []catalog.Document{{ID: "c", Name: "C"}}); err != nil {
		t.Fatalf("put second: %v", err)
	}

	got, err := store.ListCatalogDocuments(ctx, "srd")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("documents = %+v, want only c", got)
	}

	packs, err := store.ListCatalogPacks(ctx)
	if err != nil {
		t.Fatalf("list packs: %v", err)
	}
	if len(packs) != 2 || packs[0].Pack != "homebrew" || packs[1].Pack != "srd" || packs[1].Documents != 1 {
		t.Fatalf("packs = %+v", packs)
	}
}

func TestListCatalogDocumentsUnknownPack(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.ListCatalogDocuments(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := store.ListCatalogDocuments(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty pack")
	}
}

func TestGenerationRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	input := storage.Generation{
		ID:        "gen-1",
		Kind:      storage.GenerationStock,
		Pack:      "srd",
		Merchant:  "blacksmith",
		Seed:      -42,
		Request:   []byte(`{"merchant":"blacksmith"}`),
		Result:    []byte(`{"rows":[]}`),
		CreatedAt: now,
	}
	if err := store.PutGeneration(context.Background(), input); err != nil {
		t.Fatalf("put generation: %v", err)
	}

	got, err := store.GetGeneration(context.Background(), "gen-1")
	if err != nil {
		t.Fatalf("get generation: %v", err)
	}
	if !reflect.DeepEqual(got, input) {
		t.Fatalf("generation = %+v, want %+v", got, input)
	}

	if err := store.PutGeneration(context.Background(), input); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate put err = %v, want ErrAlreadyExists", err)
	}
	if _, err := store.GetGeneration(context.Background(), "gen-2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing get err = %v, want ErrNotFound", err)
	}
}

func TestPutGenerationValidates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.PutGeneration(context.Background(), storage.Generation{Kind: storage.GenerationLoot}); err == nil {
		t.Fatal("expected missing id error")
	}
	if err := store.PutGeneration(context.Background(), storage.Generation{ID: "x", Kind: "trade"}); err == nil {
		t.Fatal("expected unknown kind error")
	}
}

func TestListGenerationsPaginates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for _, id := range []string{"c", "a", "b"} {
		if err := store.PutGeneration(context.Background(), storage.Generation{ID: id, Kind: storage.GenerationLoot, Request: []byte("{}"), Result: []byte("{}")}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	first, err := store.ListGenerations(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first.Generations) != 2 || first.Generations[0].ID != "a" || first.NextPageToken != "b" {
		t.Fatalf("first page = %+v", first)
	}

	second, err := store.ListGenerations(context.Background(), 2, first.NextPageToken)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Generations) != 1 || second.Generations[0].ID != "c" || second.NextPageToken != "" {
		t.Fatalf("second page = %+v", second)
	}

	if _, err := store.ListGenerations(context.Background(), 0, ""); err == nil {
		t.Fatal("expected page size error")
	}
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.ListCatalogPacks(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "forge.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
