package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTiers_Defaults(t *testing.T) {
	tiers := NewTiers(TierOptions{}, nil)

	assert.Equal(t, 10*time.Minute, tiers.Reference.DefaultTTL())
	assert.Equal(t, 5*time.Minute, tiers.Volatile.DefaultTTL())
	assert.Same(t, tiers.Volatile, tiers.ByName(TierVolatile))
	assert.Nil(t, tiers.ByName("unknown"))
}

func TestTiers_InvalidateFamilyHitsBothTiers(t *testing.T) {
	ctx := context.Background()
	tiers := NewTiers(TierOptions{}, nil)

	tiers.Reference.Set(ctx, NewKey(FamilySettings, KindAll).String(), 1)
	tiers.Volatile.Set(ctx, NewKey(FamilySettings, KindPublic).String(), 2)

	assert.Equal(t, 2, tiers.InvalidateFamily(ctx, FamilySettings))
	assert.Len(t, tiers.Stats(ctx), 2)
}

func TestTiers_Disabled(t *testing.T) {
	ctx := context.Background()
	tiers := Disabled()

	assert.Empty(t, tiers.All())
	tiers.Reference.Set(ctx, "k", 1)
	_, ok := tiers.Reference.Get(ctx, "k")
	assert.False(t, ok)
}
