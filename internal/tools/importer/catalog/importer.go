// Package catalogimporter loads catalog pack files into the forge store.
package catalogimporter

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/config"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/catalogio"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/catalog"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/storage"
	forgesqlite "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/storage/sqlite"
)

// Config holds configuration for the catalog importer.
type Config struct {
	Dir    string
	DBPath string
	DryRun bool
}

// ParseConfig parses environment and CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var paths config.Paths
	if err := config.ParseEnv(&paths); err != nil {
		return Config{}, err
	}
	cfg := Config{DBPath: paths.DBPath}

	fs.StringVar(&cfg.Dir, "dir", "", "directory of <pack>.json or <pack>.json.zst catalog files")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "forge database path")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "validate without writing to the database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Dir) == "" {
		return Config{}, errors.New("dir is required")
	}
	if !cfg.DryRun && strings.TrimSpace(cfg.DBPath) == "" {
		return Config{}, errors.New("db-path is required")
	}
	return cfg, nil
}

// packFile is one catalog file found in the import directory.
type packFile struct {
	pack string
	path string
}

// Run executes the importer using the provided Config.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return errors.New("dir is required")
	}
	files, err := listPackFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no catalog files found in %s", dir)
	}

	var store storage.CatalogStore
	if !cfg.DryRun {
		if parent := filepath.Dir(cfg.DBPath); parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
		catalogStore, err := forgesqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open catalog store: %w", err)
		}
		defer catalogStore.Close()
		store = catalogStore
	}

	for _, file := range files {
		report, err := catalogio.LoadReport(file.path)
		if err != nil {
			return fmt.Errorf("read %s: %w", file.pack, err)
		}
		docs := report.Documents
		usable := countUsable(docs)
		if _, err := fmt.Fprintf(out, "pack %s: %d document(s), %d usable, %d skipped\n", file.pack, len(docs), usable, report.Skipped); err != nil {
			return err
		}
		if cfg.DryRun {
			continue
		}
		if err := store.PutCatalogDocuments(ctx, file.pack, docs); err != nil {
			return fmt.Errorf("import %s: %w", file.pack, err)
		}
	}

	if cfg.DryRun {
		_, err = fmt.Fprintf(out, "validated %d pack(s)\n", len(files))
		return err
	}
	_, err = fmt.Fprintf(out, "imported %d pack(s) into %s\n", len(files), cfg.DBPath)
	return err
}

// listPackFiles returns catalog files in dir sorted by pack name. A pack
// present both plain and compressed is rejected.
func listPackFiles(dir string) ([]packFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	seen := map[string]string{}
	var files []packFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pack, ok := packName(entry.Name())
		if !ok {
			continue
		}
		if prior, dup := seen[pack]; dup {
			return nil, fmt.Errorf("pack %s is provided by both %s and %s", pack, prior, entry.Name())
		}
		seen[pack] = entry.Name()
		files = append(files, packFile{pack: pack, path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].pack < files[j].pack })
	return files, nil
}

func packName(fileName string) (string, bool) {
	name := strings.TrimSuffix(fileName, catalogio.CompressedExt)
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	pack := strings.TrimSuffix(name, ".json")
	return pack, pack != ""
}

// countUsable counts documents the engine can select: they need a key and a
// display name.
func countUsable(docs []catalog.Document) int {
	n := 0
	for _, doc := range docs {
		if doc.Key() != "" && doc.DisplayName() != "" {
			n++
		}
	}
	return n
}
