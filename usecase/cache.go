package usecase

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	domainCache "github.com/jivitsolutions/jivit-site/domains/cache"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
	pkgError "github.com/jivitsolutions/jivit-site/pkg/error"
	"github.com/sirupsen/logrus"
)

type cacheService struct {
	tiers *cache.Tiers
}

func NewCacheService(tiers *cache.Tiers) domainCache.ICacheUsecase {
	if tiers == nil {
		tiers = cache.Disabled()
	}
	return &cacheService{tiers: tiers}
}

func (s *cacheService) GetStats(ctx context.Context) (domainCache.CacheStats, error) {
	stats := domainCache.CacheStats{Tiers: s.tiers.Stats(ctx)}
	for _, t := range stats.Tiers {
		stats.TotalSize += t.Bytes
	}
	stats.HumanSize = humanize.Bytes(uint64(stats.TotalSize))
	for _, f := range cache.Families() {
		stats.Families = append(stats.Families, string(f))
	}
	return stats, nil
}

func (s *cacheService) Keys(ctx context.Context, tier, prefix string) ([]string, error) {
	c, err := s.tier(tier)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return []string{}, nil
	}
	return c.Keys(ctx, prefix)
}

func (s *cacheService) Invalidate(ctx context.Context, req domainCache.InvalidateRequest) (domainCache.InvalidateResult, error) {
	targets := s.tiers.All()
	if req.Tier != "" {
		c, err := s.tier(req.Tier)
		if err != nil {
			return domainCache.InvalidateResult{}, err
		}
		targets = nil
		if c != nil {
			targets = []*cache.Cache{c}
		}
	}

	var (
		res   domainCache.InvalidateResult
		apply func(c *cache.Cache) int
	)
	switch {
	case req.All:
		res.Scope = "all"
		apply = func(c *cache.Cache) int { return c.Invalidate(ctx) }
	case req.Family != "":
		family, ok := cache.ParseFamily(req.Family)
		if !ok {
			return res, pkgError.ValidationError(fmt.Sprintf("unknown cache family %q", req.Family))
		}
		res.Scope = "family:" + string(family)
		apply = func(c *cache.Cache) int { return c.InvalidateFamily(ctx, family) }
	case req.Pattern != "":
		res.Scope = "pattern:" + req.Pattern
		apply = func(c *cache.Cache) int { return c.Invalidate(ctx, req.Pattern) }
	default:
		return res, pkgError.ValidationError("one of all, family or pattern is required")
	}

	for _, c := range targets {
		res.Removed += apply(c)
	}
	logrus.Infof("[CACHE] invalidated %s, %d entries removed", res.Scope, res.Removed)
	return res, nil
}

func (s *cacheService) tier(name string) (*cache.Cache, error) {
	switch name {
	case "", cache.TierReference:
		return s.tiers.Reference, nil
	case cache.TierVolatile:
		return s.tiers.Volatile, nil
	}
	return nil, pkgError.ValidationError(fmt.Sprintf("unknown cache tier %q", name))
}
