// Package settings loads the tunable tables for loot and merchant stock from
// YAML.
package settings

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/filter"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/loot"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/rarity"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/domain/stock"
)

// DefaultMerchant names the merchant used when none is requested.
const DefaultMerchant = "general"

const (
	defaultTargetCount  = 12
	defaultDuplicatePct = 15
	defaultMaxStackSize = 5
)

// Settings is the full tuning document.
type Settings struct {
	Loot      loot.Settings       `yaml:"loot" json:"loot"`
	Merchants map[string]Merchant `yaml:"merchants" json:"merchants"`
}

// Merchant describes one vendor profile.
type Merchant struct {
	TargetCount int     `yaml:"target_count" json:"target_count"`
	TargetValue float64 `yaml:"target_value" json:"target_value"`
	// DuplicateChancePercent is a percentage in [0,100].
	DuplicateChancePercent float64        `yaml:"duplicate_chance_percent" json:"duplicate_chance_percent"`
	MaxStackSize           int            `yaml:"max_stack_size" json:"max_stack_size"`
	RarityWeights          rarity.Weights `yaml:"rarity_weights" json:"rarity_weights"`
	// Script is an optional path to a Lua scoring script.
	Script string `yaml:"script" json:"script,omitempty"`

	stock.SelectionConfig `yaml:",inline"`
}

// Default returns the built-in settings with a single general merchant.
func Default() Settings {
	return Settings{
		Loot: loot.DefaultSettings(),
		Merchants: map[string]Merchant{
			DefaultMerchant: DefaultMerchantProfile(),
		},
	}
}

// DefaultMerchantProfile returns the general merchant profile.
func DefaultMerchantProfile() Merchant {
	return Merchant{
		TargetCount:            defaultTargetCount,
		DuplicateChancePercent: defaultDuplicatePct,
		MaxStackSize:           defaultMaxStackSize,
		RarityWeights:          rarity.DefaultWeights(),
	}
}

// Load reads settings from path. An empty path returns Default.
func Load(path string) (Settings, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	s, err := Parse(raw)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML over the defaults, normalizes and validates the result.
func Parse(raw []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Normalize clamps invalid numbers to usable values.
func (s *Settings) Normalize() {
	if s == nil {
		return
	}
	if s.Loot.RarityWeights.IsZero() {
		s.Loot.RarityWeights = rarity.DefaultWeights()
	}
	if !finite(s.Loot.GoldMultiplier) || s.Loot.GoldMultiplier < 0 {
		s.Loot.GoldMultiplier = 1
	}
	if s.Merchants == nil {
		s.Merchants = map[string]Merchant{}
	}
	if _, ok := s.Merchants[DefaultMerchant]; !ok {
		s.Merchants[DefaultMerchant] = DefaultMerchantProfile()
	}
	for name, m := range s.Merchants {
		m.normalize()
		s.Merchants[name] = m
	}
}

func (m *Merchant) normalize() {
	if m.TargetCount <= 0 {
		m.TargetCount = defaultTargetCount
	}
	if !finite(m.TargetValue) || m.TargetValue < 0 {
		m.TargetValue = 0
	}
	switch {
	case !finite(m.DuplicateChancePercent) || m.DuplicateChancePercent < 0:
		m.DuplicateChancePercent = 0
	case m.DuplicateChancePercent > 100:
		m.DuplicateChancePercent = 100
	}
	if m.MaxStackSize < 1 {
		m.MaxStackSize = defaultMaxStackSize
	}
	if m.RarityWeights.IsZero() {
		m.RarityWeights = rarity.DefaultWeights()
	}
}

// Validate reports settings that cannot be used, such as merchant filter
// expressions that do not parse.
func (s Settings) Validate() error {
	for _, name := range s.MerchantNames() {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("merchant name must not be empty")
		}
		m := s.Merchants[name]
		if _, err := filter.Parse(m.Filter, filter.CatalogFields()); err != nil {
			return fmt.Errorf("merchant %s: %w", name, err)
		}
	}
	return nil
}

// MerchantNames returns the configured merchant names in sorted order.
func (s Settings) MerchantNames() []string {
	names := make([]string, 0, len(s.Merchants))
	for name := range s.Merchants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merchant returns the named profile. An empty name selects DefaultMerchant.
func (s Settings) Merchant(name string) (Merchant, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultMerchant
	}
	m, ok := s.Merchants[name]
	return m, ok
}

// DuplicateChance returns the duplicate chance as a probability in [0,1].
func (m Merchant) DuplicateChance() float64 {
	p := m.DuplicateChancePercent / 100
	if !finite(p) || p < 0 {
		return 0
	}
	return math.Min(1, p)
}

// Request converts the profile into a selection request. Curated keys are
// seeded in their configured order.
func (m Merchant) Request() stock.Request {
	return stock.Request{
		TargetCount:     m.TargetCount,
		TargetValue:     m.TargetValue,
		RarityWeights:   m.RarityWeights,
		DuplicateChance: m.DuplicateChance(),
		MaxStackSize:    m.MaxStackSize,
		CuratedOrder:    append([]string(nil), m.Curated...),
	}.Normalized()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
