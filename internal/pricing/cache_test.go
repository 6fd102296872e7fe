package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/catalog-pricing/internal/cache"
	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

func TestPriceCacheTTLPolicy(t *testing.T) {
	c := &PriceCache{}
	enabled := Settings{CachePrices: true, CacheTTL: time.Hour}

	if got := c.TTL(&catalog.Product{}, enabled); got != time.Hour {
		t.Fatalf("expected the configured TTL, got %s", got)
	}
	if got := c.TTL(&catalog.Product{IsRental: true}, enabled); got != 0 {
		t.Fatalf("expected zero TTL for a rental product, got %s", got)
	}
	if got := c.TTL(&catalog.Product{}, Settings{CacheTTL: time.Hour}); got != 0 {
		t.Fatalf("expected zero TTL with caching disabled, got %s", got)
	}
}

func TestGetOrComputeBypassesOnZeroTTL(t *testing.T) {
	metrics := &countingMetrics{}
	c := &PriceCache{
		Store:   cache.NewMemoryStore(nil),
		Logger:  zerolog.Nop(),
		Metrics: metrics,
	}

	calls := 0
	for i := 0; i < 2; i++ {
		_, err := c.GetOrCompute(context.Background(), "price:test", 0, func(context.Context) (CachedPrice, error) {
			calls++
			return CachedPrice{Price: dec("10")}, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("expected compute on every call, got %d", calls)
	}
	if metrics.bypasses != 2 {
		t.Fatalf("expected 2 bypasses, got %d", metrics.bypasses)
	}
	if metrics.hits != 0 || metrics.misses != 0 {
		t.Fatalf("expected no hit/miss counts on bypass, got %d/%d", metrics.hits, metrics.misses)
	}
}

func TestGetOrComputeMissThenHit(t *testing.T) {
	metrics := &countingMetrics{}
	c := &PriceCache{
		Store:   cache.NewMemoryStore(nil),
		Logger:  zerolog.Nop(),
		Metrics: metrics,
	}
	want := CachedPrice{Price: dec("67.5"), DiscountID: uuid.New(), DiscountAmount: dec("7.5")}

	calls := 0
	compute := func(context.Context) (CachedPrice, error) {
		calls++
		return want, nil
	}
	for i := 0; i < 2; i++ {
		got, err := c.GetOrCompute(context.Background(), "price:test", time.Hour, compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Price.Equal(want.Price) || got.DiscountID != want.DiscountID || !got.DiscountAmount.Equal(want.DiscountAmount) {
			t.Fatalf("round %d: got %+v", i, got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single computation, got %d", calls)
	}
	if metrics.misses != 1 || metrics.hits != 1 {
		t.Fatalf("expected one miss and one hit, got %d/%d", metrics.misses, metrics.hits)
	}
}

func TestGetOrComputeSurvivesBrokenStore(t *testing.T) {
	c := &PriceCache{Store: brokenStore{}, Logger: zerolog.Nop()}

	got, err := c.GetOrCompute(context.Background(), "price:test", time.Hour, func(context.Context) (CachedPrice, error) {
		return CachedPrice{Price: dec("10")}, nil
	})
	if err != nil {
		t.Fatalf("store failures must not surface: %v", err)
	}
	if !got.Price.Equal(dec("10")) {
		t.Fatalf("expected the computed price, got %s", got.Price)
	}
}

func TestFingerprintKeyStableAcrossRoleOrder(t *testing.T) {
	roleA, roleB := uuid.New(), uuid.New()
	base := Fingerprint{
		ProductID:        uuid.New(),
		AdditionalCharge: decimal.NewFromInt(5),
		IncludeDiscounts: true,
		Quantity:         3,
		StoreID:          uuid.New(),
	}
	first := base
	first.RoleIDs = []uuid.UUID{roleA, roleB}
	second := base
	second.RoleIDs = []uuid.UUID{roleB, roleA}

	if first.Key() != second.Key() {
		t.Fatalf("role order changed the key: %q vs %q", first.Key(), second.Key())
	}

	other := base
	other.Quantity = 4
	if other.Key() == base.Key() {
		t.Fatal("expected distinct keys for distinct quantities")
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, context.DeadlineExceeded
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return context.DeadlineExceeded
}
