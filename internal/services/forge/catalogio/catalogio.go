// Package catalogio reads catalog documents at the process boundary and
// writes generation archives.
package catalogio

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/catalog"
)

// ErrNotSequence reports a catalog whose top-level JSON value is not an array.
var ErrNotSequence = errors.New("catalog must be a JSON array of documents")

// CompressedExt marks zstd-compressed JSON files.
const CompressedExt = ".zst"

//go:embed catalog.schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("catalog.schema.json", schemaSource)

// Report is a decoded catalog together with the number of entries dropped
// because their fields have the wrong JSON types.
type Report struct {
	Documents []catalog.Document
	Skipped   int
}

// Decode reads a JSON array of catalog documents from r. Malformed entries
// are dropped; see DecodeReport.
func Decode(r io.Reader) ([]catalog.Document, error) {
	report, err := DecodeReport(r)
	if err != nil {
		return nil, err
	}
	return report.Documents, nil
}

// DecodeReport reads a JSON array of catalog documents from r.
//
// The only rejected input is one whose top-level value is not an array.
// Each entry is checked against the schema on its own; entries with
// mistyped fields are skipped and counted, entries missing an id or name are
// kept and left for the builders to drop.
func DecodeReport(r io.Reader) (Report, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Report{}, fmt.Errorf("read catalog: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return Report{}, fmt.Errorf("decode catalog: %w", err)
	}
	if _, ok := value.([]any); !ok {
		return Report{}, fmt.Errorf("%w, got %s", ErrNotSequence, jsonKind(value))
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return Report{}, fmt.Errorf("decode catalog: %w", err)
	}
	report := Report{Documents: make([]catalog.Document, 0, len(entries))}
	for _, entry := range entries {
		doc, ok := decodeEntry(entry)
		if !ok {
			report.Skipped++
			continue
		}
		report.Documents = append(report.Documents, doc)
	}
	return report, nil
}

// decodeEntry validates one entry as a single-element catalog and decodes it.
func decodeEntry(entry json.RawMessage) (catalog.Document, bool) {
	dec := json.NewDecoder(bytes.NewReader(entry))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return catalog.Document{}, false
	}
	if err := schema.Validate([]any{value}); err != nil {
		return catalog.Document{}, false
	}
	var doc catalog.Document
	if err := json.Unmarshal(entry, &doc); err != nil {
		return catalog.Document{}, false
	}
	return doc, true
}

// Load reads a catalog file. Files ending in .zst are zstd-decompressed.
func Load(path string) ([]catalog.Document, error) {
	report, err := LoadReport(path)
	if err != nil {
		return nil, err
	}
	return report.Documents, nil
}

// LoadReport is Load that also reports how many entries were skipped.
func LoadReport(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, CompressedExt) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return Report{}, fmt.Errorf("open zstd catalog: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	report, err := DecodeReport(r)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return report, nil
}

// WriteResult writes v as JSON to path, zstd-compressed when path ends in
// .zst.
func WriteResult(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := writeResult(f, path, v); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close result: %w", err)
	}
	return nil
}

func writeResult(w io.Writer, path string, v any) error {
	if !strings.HasSuffix(path, CompressedExt) {
		return writeJSON(w, v)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if err := writeJSON(enc, v); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadResult reads a file written by WriteResult into v.
func ReadResult(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, CompressedExt) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return err
		}
		defer dec.Close()
		r = dec
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
