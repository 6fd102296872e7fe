package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartType distinguishes the buyer's carts (ordinary cart vs. wishlist).
type CartType string

const (
	CartTypeShoppingCart CartType = "shopping_cart"
	CartTypeWishlist     CartType = "wishlist"
)

// Customer is the buyer a price is computed for. Role and store membership
// scope tier prices and form part of the price cache fingerprint.
type Customer struct {
	ID      uuid.UUID
	StoreID uuid.UUID
	RoleIDs []uuid.UUID
}

// CartLine is a buyer's chosen product with selected options and quantity.
// Quantity grouping across lines of the same product is a policy applied by
// the engine, not an invariant of the line itself.
type CartLine struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	CartType   CartType
	Quantity   int

	// AttributesPayload is the serialized option-selection payload. Parsing it
	// is delegated to the option payload parser collaborator.
	AttributesPayload string

	// CustomerEnteredPrice is meaningful only when the product has the
	// customer-enters-price flag set.
	CustomerEnteredPrice decimal.Decimal

	RentalStart *time.Time
	RentalEnd   *time.Time
}
