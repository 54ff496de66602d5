package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noval-eka/storefront/internal/voucher"
)

type countingSource struct {
	rules map[string]*voucher.Rule
	calls int
}

func (s *countingSource) RuleByCode(_ context.Context, code string) (*voucher.Rule, error) {
	s.calls++
	return s.rules[code], nil
}

func newTestCache(t *testing.T, fallback voucher.Source) (*VoucherSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &VoucherSource{Client: client, Fallback: fallback, TTL: time.Minute}, mr
}

func TestRuleByCodeCachesHit(t *testing.T) {
	src := &countingSource{rules: map[string]*voucher.Rule{
		"SUMMER": {Code: "SUMMER", Name: "Summer", Kind: voucher.KindValue, DiscountType: voucher.DiscountFixed, Value: 5_000},
	}}
	cache, _ := newTestCache(t, src)

	first, err := cache.RuleByCode(context.Background(), "SUMMER")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := cache.RuleByCode(context.Background(), "SUMMER")
	require.NoError(t, err)
	require.NotNil(t, second)
	require.Equal(t, first.Value, second.Value)
	require.Equal(t, 1, src.calls, "second lookup must come from cache")
}

func TestRuleByCodeCachesMiss(t *testing.T) {
	src := &countingSource{rules: map[string]*voucher.Rule{}}
	cache, _ := newTestCache(t, src)

	rule, err := cache.RuleByCode(context.Background(), "GONE")
	require.NoError(t, err)
	require.Nil(t, rule)

	rule, err = cache.RuleByCode(context.Background(), "GONE")
	require.NoError(t, err)
	require.Nil(t, rule)
	require.Equal(t, 1, src.calls, "negative result must be cached")
}

func TestKeyMatchesStoredEntries(t *testing.T) {
	src := &countingSource{rules: map[string]*voucher.Rule{}}
	cache, mr := newTestCache(t, src)

	_, err := cache.RuleByCode(context.Background(), "GONE")
	require.NoError(t, err)

	stored, err := mr.Get(Key("GONE"))
	require.NoError(t, err)
	require.Equal(t, missSentinel, stored)
}

func TestInvalidateForcesReload(t *testing.T) {
	src := &countingSource{rules: map[string]*voucher.Rule{
		"SUMMER": {Code: "SUMMER", Kind: voucher.KindValue, DiscountType: voucher.DiscountFixed, Value: 5_000},
	}}
	cache, _ := newTestCache(t, src)

	_, err := cache.RuleByCode(context.Background(), "SUMMER")
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(context.Background(), "SUMMER"))

	src.rules["SUMMER"].Value = 9_000
	rule, err := cache.RuleByCode(context.Background(), "SUMMER")
	require.NoError(t, err)
	require.EqualValues(t, 9_000, rule.Value)
	require.Equal(t, 2, src.calls)
}

func TestRuleByCodeWithoutRedisFallsThrough(t *testing.T) {
	src := &countingSource{rules: map[string]*voucher.Rule{
		"SUMMER": {Code: "SUMMER", Kind: voucher.KindValue, DiscountType: voucher.DiscountFixed, Value: 5_000},
	}}
	cache := &VoucherSource{Fallback: src}

	rule, err := cache.RuleByCode(context.Background(), "SUMMER")
	require.NoError(t, err)
	require.NotNil(t, rule)
	require.Equal(t, 1, src.calls)
}
