package cache

import (
	"context"

	pkgCache "github.com/jivitsolutions/jivit-site/pkg/cache"
)

type CacheStats struct {
	Tiers     []pkgCache.Stats `json:"tiers"`
	TotalSize int64            `json:"total_size"`
	HumanSize string           `json:"human_size"`
	Families  []string         `json:"families"`
}

// InvalidateRequest selects what to drop. Exactly one of the fields is used,
// in the order All, Family, Pattern.
type InvalidateRequest struct {
	All     bool   `json:"all"`
	Family  string `json:"family"`
	Pattern string `json:"pattern"`
	Tier    string `json:"tier"`
}

type InvalidateResult struct {
	Scope   string `json:"scope"`
	Removed int    `json:"removed"`
}

type ICacheUsecase interface {
	GetStats(ctx context.Context) (CacheStats, error)
	Keys(ctx context.Context, tier, prefix string) ([]string, error)
	Invalidate(ctx context.Context, req InvalidateRequest) (InvalidateResult, error)
}
