package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	domainCache "github.com/jivitsolutions/jivit-site/domains/cache"
	"github.com/jivitsolutions/jivit-site/infrastructure/valkey"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the read-through cache",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop cached entries (the whole reference tier by default)",
	Long: `Drop cached entries. This clears the shared reference tier in Valkey and notifies
every running node so their local tiers follow. Without Valkey each server only holds
an in-process cache the CLI cannot reach, so the command refuses to run; use
POST /api/admin/cache/invalidate on the server instead.`,
	Run: runCacheFlush,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cache tier statistics",
	Run:   runCacheStats,
}

var (
	flushFamily  string
	flushPattern string
	flushTier    string
)

func init() {
	cacheFlushCmd.Flags().StringVar(&flushFamily, "family", "", "only drop one family, one of: "+familyNames())
	cacheFlushCmd.Flags().StringVar(&flushPattern, "pattern", "", `only drop keys containing the pattern | example: --pattern="blogs:slug"`)
	cacheFlushCmd.Flags().StringVar(&flushTier, "tier", cache.TierReference, "tier to flush (reference, volatile or empty for both)")

	cacheCmd.AddCommand(cacheFlushCmd, cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheFlush(_ *cobra.Command, _ []string) {
	defer StopApp()

	if err := requireSharedCache(vkClient); err != nil {
		logrus.Error(err)
		StopApp()
		os.Exit(1)
	}

	req := domainCache.InvalidateRequest{
		All:     flushFamily == "" && flushPattern == "",
		Family:  flushFamily,
		Pattern: flushPattern,
		Tier:    flushTier,
	}
	result, err := cacheUsecase.Invalidate(appCtx, req)
	if err != nil {
		logrus.Fatalf("[CACHE] flush failed: %v", err)
	}
	fmt.Printf("flushed %s: %d entries removed\n", result.Scope, result.Removed)
}

func runCacheStats(_ *cobra.Command, _ []string) {
	defer StopApp()

	stats, err := cacheUsecase.GetStats(appCtx)
	if err != nil {
		logrus.Fatalf("[CACHE] stats failed: %v", err)
	}
	for _, t := range stats.Tiers {
		fmt.Printf("%-10s store=%-7s entries=%-5d size=%-8s hits=%d misses=%d ttl=%s\n",
			t.Name, t.Store, t.Entries, t.HumanSize, t.Hits, t.Misses, t.DefaultTTL)
	}
	fmt.Printf("total: %s\n", stats.HumanSize)
}

// requireSharedCache fails when the CLI would only flush its own memory tiers.
func requireSharedCache(client *valkey.Client) error {
	if client == nil {
		return errors.New("[CACHE] flush needs Valkey (VALKEY_ENABLED=true): without it the cache lives inside each server process")
	}
	return nil
}

func familyNames() string {
	names := make([]string, 0, len(cache.Families()))
	for _, f := range cache.Families() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
