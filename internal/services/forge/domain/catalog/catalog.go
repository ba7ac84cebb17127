// Package catalog defines the plain records the engine consumes.
//
// Documents are the loose boundary shape read from catalog files and stores;
// Items are the normalized records the loot assembler samples from. Neither
// is mutated by the engine.
package catalog

import (
	"math"
	"strings"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/rarity"
)

// DefaultWeight is applied to documents that do not carry a weight.
const DefaultWeight = 1.0

// Document is one catalog entry as supplied by the catalog source.
type Document struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type,omitempty"`
	Rarity      string   `json:"rarity,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Weight      *float64 `json:"weight,omitempty"`
	MaxQuantity int      `json:"max_quantity,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Item is a normalized catalog record.
type Item struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        string        `json:"type,omitempty"`
	Rarity      rarity.Rarity `json:"rarity"`
	Value       float64       `json:"value"`
	Weight      float64       `json:"weight"`
	MaxQuantity int           `json:"max_quantity,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
}

// Key returns the trimmed stable key of the document.
func (d Document) Key() string {
	return strings.TrimSpace(d.ID)
}

// DisplayName returns the trimmed display name of the document.
func (d Document) DisplayName() string {
	return strings.TrimSpace(d.Name)
}

// WeightOrDefault returns the document weight, or DefaultWeight when unset.
func (d Document) WeightOrDefault() float64 {
	if d.Weight == nil {
		return DefaultWeight
	}
	return *d.Weight
}

// Item converts the document into a normalized Item. The second return value
// is false when the document lacks a key or a display name.
func (d Document) Item() (Item, bool) {
	key := d.Key()
	name := d.DisplayName()
	if key == "" || name == "" {
		return Item{}, false
	}
	maxQty := d.MaxQuantity
	if maxQty < 0 {
		maxQty = 0
	}
	return Item{
		ID:          key,
		Name:        name,
		Type:        strings.TrimSpace(d.Type),
		Rarity:      rarity.Normalize(d.Rarity),
		Value:       ClampValue(d.Price),
		Weight:      d.WeightOrDefault(),
		MaxQuantity: maxQty,
		Tags:        append([]string(nil), d.Tags...),
	}, true
}

// Items converts documents, dropping entries without key or name and keeping
// the first occurrence of each key.
func Items(docs []Document) []Item {
	items := make([]Item, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		item, ok := d.Item()
		if !ok || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	return items
}

// ClampValue maps negative and non-finite values to zero.
func ClampValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
