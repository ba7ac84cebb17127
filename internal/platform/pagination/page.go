// Package pagination normalizes list request paging.
package pagination

import "strings"

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// Generations bounds generation listings.
var Generations = PageSizeConfig{Default: 20, Max: 100}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// NormalizeToken trims a caller-supplied page token.
func NormalizeToken(token string) string {
	return strings.TrimSpace(token)
}
