package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noval-eka/storefront/internal/repo"
	"github.com/noval-eka/storefront/internal/voucher"
)

const voucherKeyPrefix = "voucher:code:"

// missSentinel is stored for codes that do not exist so repeated lookups of
// dead codes don't hit Postgres on every recalculation.
const missSentinel = "__miss__"

// VoucherSource is a read-through Redis cache in front of the Postgres
// voucher lookup. It implements voucher.Source for the resolver and
// voucher.Invalidator for the admin service.
type VoucherSource struct {
	Client   *redis.Client
	Fallback voucher.Source
	TTL      time.Duration
}

func (s *VoucherSource) ttl() time.Duration {
	if s.TTL <= 0 {
		return 30 * time.Second
	}
	return s.TTL
}

// RuleByCode implements voucher.Source. Cache failures fall back to the
// underlying source so Redis outages degrade to slower lookups, not errors.
func (s *VoucherSource) RuleByCode(ctx context.Context, code string) (*voucher.Rule, error) {
	if s == nil || s.Fallback == nil {
		return nil, errors.New("cache: voucher source not configured")
	}
	if s.Client == nil {
		return s.Fallback.RuleByCode(ctx, code)
	}
	key := Key(code)
	data, err := s.Client.Get(ctx, key).Bytes()
	if err == nil {
		if string(data) == missSentinel {
			return nil, nil
		}
		var row repo.Voucher
		if err := json.Unmarshal(data, &row); err == nil {
			rule := voucher.RuleFromModel(row)
			return &rule, nil
		}
		// corrupt entry: drop it and fall through to the source
		_ = s.Client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		return s.Fallback.RuleByCode(ctx, code)
	}

	rule, err := s.Fallback.RuleByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		_ = s.Client.Set(ctx, key, missSentinel, s.ttl()).Err()
		return nil, nil
	}
	if encoded, err := json.Marshal(modelFromRule(*rule)); err == nil {
		_ = s.Client.Set(ctx, key, encoded, s.ttl()).Err()
	}
	return rule, nil
}

// Invalidate implements voucher.Invalidator.
func (s *VoucherSource) Invalidate(ctx context.Context, code string) error {
	if s == nil || s.Client == nil {
		return nil
	}
	return s.Client.Del(ctx, Key(code)).Err()
}

// modelFromRule flattens a rule back into the row shape used as the cache
// encoding, so cache hits and database reads produce identical rules.
func modelFromRule(r voucher.Rule) repo.Voucher {
	row := repo.Voucher{
		ID:           r.ID,
		Code:         r.Code,
		Name:         r.Name,
		Kind:         string(r.Kind),
		DiscountType: string(r.DiscountType),
		Value:        r.Value,
		ProductID:    r.ProductID,
		CategoryID:   r.CategoryID,
		MinSpend:     r.MinSpend,
		UsedCount:    r.UsedCount,
		ValidFrom:    r.ValidFrom,
		ValidTo:      r.ValidTo,
	}
	if r.PercentBps != 0 {
		bps := r.PercentBps
		row.PercentBps = &bps
	}
	if r.ApplyToCountry != "" {
		country := r.ApplyToCountry
		row.ApplyToCountry = &country
	}
	if r.UsageLimit != 0 {
		limit := r.UsageLimit
		row.UsageLimit = &limit
	}
	return row
}

var _ voucher.Source = (*VoucherSource)(nil)
var _ voucher.Invalidator = (*VoucherSource)(nil)

// Key returns the Redis key under which a voucher code is cached.
func Key(code string) string {
	return fmt.Sprintf("%s%s", voucherKeyPrefix, code)
}
