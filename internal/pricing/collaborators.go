package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

// ErrNilProduct is returned when a required product argument is missing.
var ErrNilProduct = errors.New("pricing: product is required")

// ErrNilCustomer is returned when a required customer argument is missing.
var ErrNilCustomer = errors.New("pricing: customer is required")

// ErrNilAttributeValue is returned when an attribute value argument is missing.
var ErrNilAttributeValue = errors.New("pricing: attribute value is required")

// ErrUnsupportedRentalPeriod indicates a rental product carries a period unit
// the calculator does not recognize. Billing periods are never guessed.
var ErrUnsupportedRentalPeriod = errors.New("pricing: unsupported rental period unit")

// DiscountEligibility answers whether a discount is currently valid for a
// customer and resolves discounts by id and type. Date windows, coupon codes
// and usage limits live behind this contract.
type DiscountEligibility interface {
	IsValid(ctx context.Context, d catalog.Discount, customer *catalog.Customer) (bool, error)
	AnyOfType(ctx context.Context, t catalog.DiscountType) (bool, error)
	ByID(ctx context.Context, id uuid.UUID) (*catalog.Discount, error)
}

// CategoryLookup resolves the categories a product belongs to, each exposing
// its own discount surface.
type CategoryLookup interface {
	CategoriesOf(ctx context.Context, productID uuid.UUID) ([]catalog.Category, error)
}

// ProductLookup resolves products by id. The engine uses it to load bundled
// sub-products referenced by attribute values.
type ProductLookup interface {
	ByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// OptionPayloadParser turns the serialized option-selection payload of a cart
// line into structured attribute values, and resolves it to a fully specified
// combination when one exists.
type OptionPayloadParser interface {
	ParseValues(ctx context.Context, product *catalog.Product, payload string) ([]catalog.AttributeValue, error)
	ResolveCombination(ctx context.Context, product *catalog.Product, payload string) (*catalog.Combination, error)
}

// CartLookup returns a customer's cart lines for a product, used when tier
// quantity grouping across distinct lines is enabled.
type CartLookup interface {
	LinesFor(ctx context.Context, customerID uuid.UUID, cartType catalog.CartType, productID uuid.UUID) ([]catalog.CartLine, error)
}

// CacheStore is the key-value store behind the price cache. Implementations
// must treat a missing key as (nil, false, nil).
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
