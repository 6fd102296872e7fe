package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

// CachedPrice is the memoized outcome of a price computation. It carries only
// plain data: the discount is stored as an id and re-hydrated by the caller
// after the cache read, because the discount object itself may carry
// request-scoped state and must never be persisted across requests.
type CachedPrice struct {
	Price          decimal.Decimal `json:"price"`
	DiscountID     uuid.UUID       `json:"discount_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// Fingerprint captures every cacheable input that can change a final price.
// Rental dates are deliberately absent: rental products bypass the cache
// instead of expanding the key space with date pairs.
type Fingerprint struct {
	ProductID        uuid.UUID
	AdditionalCharge decimal.Decimal
	IncludeDiscounts bool
	Quantity         int
	RoleIDs          []uuid.UUID
	StoreID          uuid.UUID
}

// Key renders the fingerprint as a stable cache key. Role ids are sorted so
// the same membership always yields the same key.
func (f Fingerprint) Key() string {
	roles := make([]string, 0, len(f.RoleIDs))
	for _, id := range f.RoleIDs {
		roles = append(roles, id.String())
	}
	sort.Strings(roles)
	return fmt.Sprintf("price:final:%s:%s:%t:%d:%s:%s",
		f.ProductID, f.AdditionalCharge, f.IncludeDiscounts, f.Quantity,
		strings.Join(roles, ","), f.StoreID)
}

// Metrics counts pricing outcomes. Implementations must be safe for
// concurrent use. A nil Metrics disables counting.
type Metrics interface {
	CacheHit()
	CacheMiss()
	CacheBypass()
	Computation()
}

// PriceCache is a cache-aside wrapper around a CacheStore. A non-positive TTL
// bypasses both the read and the write, so the compute callback runs on every
// call. Concurrent misses may each run the callback; last write wins.
type PriceCache struct {
	Store   CacheStore
	Logger  zerolog.Logger
	Metrics Metrics
}

// TTL resolves the effective TTL for a product under the given settings: the
// configured duration when caching is enabled, zero when disabled, and always
// zero for rental products regardless of configuration.
func (c *PriceCache) TTL(product *catalog.Product, settings Settings) time.Duration {
	if product != nil && product.IsRental {
		return 0
	}
	if !settings.CachePrices {
		return 0
	}
	return settings.CacheTTL
}

// GetOrCompute returns the cached price for key, or runs compute and stores
// the result. Store failures are logged and never surfaced: a broken cache
// degrades to recomputation, not to a pricing error.
func (c *PriceCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (CachedPrice, error)) (CachedPrice, error) {
	if c == nil || c.Store == nil || ttl <= 0 {
		if c != nil && c.Metrics != nil {
			c.Metrics.CacheBypass()
		}
		return compute(ctx)
	}

	data, found, err := c.Store.Get(ctx, key)
	if err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("price cache read")
	} else if found {
		var cached CachedPrice
		if err := json.Unmarshal(data, &cached); err == nil {
			if c.Metrics != nil {
				c.Metrics.CacheHit()
			}
			return cached, nil
		}
		c.Logger.Warn().Err(err).Str("key", key).Msg("decode cached price")
	}

	if c.Metrics != nil {
		c.Metrics.CacheMiss()
	}
	result, err := compute(ctx)
	if err != nil {
		return CachedPrice{}, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("encode price for cache")
		return result, nil
	}
	if err := c.Store.Set(ctx, key, payload, ttl); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("price cache write")
	}
	return result, nil
}
