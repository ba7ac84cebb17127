// Package stock builds merchant candidate pools from catalog documents and
// selects bounded, budget-aware inventories from them.
package stock

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/catalog"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/filter"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/rarity"
)

// SelectionConfig narrows a catalog to the documents a merchant may stock.
//
// Empty lists disable the corresponding filter. Curated keys bypass every
// filter.
type SelectionConfig struct {
	AllowedTypes    []string `json:"allowed_types,omitempty" yaml:"allowed_types"`
	IncludeTags     []string `json:"include_tags,omitempty" yaml:"include_tags"`
	ExcludeTags     []string `json:"exclude_tags,omitempty" yaml:"exclude_tags"`
	IncludeKeywords []string `json:"include_keywords,omitempty" yaml:"include_keywords"`
	ExcludeKeywords []string `json:"exclude_keywords,omitempty" yaml:"exclude_keywords"`
	Curated         []string `json:"curated,omitempty" yaml:"curated"`
	// Filter is an optional AIP-160 expression over filter.CatalogFields.
	Filter string `json:"filter,omitempty" yaml:"filter"`
}

// Candidate is one stockable catalog entry.
type Candidate struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Type    string        `json:"type,omitempty"`
	Rarity  rarity.Rarity `json:"rarity"`
	Value   float64       `json:"value"`
	Weight  float64       `json:"weight"`
	Curated bool          `json:"curated,omitempty"`
	Tags    []string      `json:"tags,omitempty"`
}

// Build filters documents into candidates in source order.
//
// Documents without a key or display name are dropped, the first document
// for a key wins, and curated documents skip the type, tag, keyword and
// expression filters. The only error is an unparsable Filter expression.
func Build(docs []catalog.Document, cfg SelectionConfig) ([]Candidate, error) {
	expr, err := filter.Parse(cfg.Filter, filter.CatalogFields())
	if err != nil {
		return nil, fmt.Errorf("selection filter: %w", err)
	}

	curated := keySet(cfg.Curated)
	allowed := foldSet(cfg.AllowedTypes)
	includeTags := foldSet(cfg.IncludeTags)
	excludeTags := foldSet(cfg.ExcludeTags)
	includeKeywords := foldList(cfg.IncludeKeywords)
	excludeKeywords := foldList(cfg.ExcludeKeywords)

	out := make([]Candidate, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		key := doc.Key()
		isCurated := curated[key]
		if !isCurated && len(allowed) > 0 && !allowed[fold(doc.Type)] {
			continue
		}
		item, ok := doc.Item()
		if !ok || seen[item.ID] {
			continue
		}
		seen[item.ID] = true

		candidate := Candidate{
			ID:      item.ID,
			Name:    item.Name,
			Type:    item.Type,
			Rarity:  item.Rarity,
			Value:   item.Value,
			Weight:  item.Weight,
			Curated: isCurated,
			Tags:    item.Tags,
		}
		if isCurated {
			out = append(out, candidate)
			continue
		}

		tags := foldSet(doc.Tags)
		if len(includeTags) > 0 && !intersects(tags, includeTags) {
			continue
		}
		if intersects(tags, excludeTags) {
			continue
		}
		text := keywordText(doc)
		if len(includeKeywords) > 0 && !containsAny(text, includeKeywords) {
			continue
		}
		if containsAny(text, excludeKeywords) {
			continue
		}
		if expr != nil {
			match, err := filter.Evaluate(expr, candidate.field)
			if err != nil {
				return nil, fmt.Errorf("evaluate filter for %s: %w", candidate.ID, err)
			}
			if !match {
				continue
			}
		}
		out = append(out, candidate)
	}
	return out, nil
}

// field resolves filter identifiers against the candidate.
func (c Candidate) field(name string) (any, bool) {
	switch name {
	case "id":
		return c.ID, true
	case "name":
		return c.Name, true
	case "type":
		return c.Type, true
	case "rarity":
		return string(c.Rarity), true
	case "value":
		return c.Value, true
	case "weight":
		return c.Weight, true
	case "curated":
		return c.Curated, true
	default:
		return nil, false
	}
}

// keywordText is the folded searchable text of a document: its keywords,
// name and description.
func keywordText(doc catalog.Document) string {
	parts := make([]string, 0, len(doc.Keywords)+2)
	parts = append(parts, doc.Keywords...)
	parts = append(parts, doc.Name, doc.Description)
	return fold(strings.Join(parts, "\n"))
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			set[k] = true
		}
	}
	return set
}

func foldSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if f := fold(v); f != "" {
			set[f] = true
		}
	}
	return set
}

func foldList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if f := fold(v); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func intersects(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
