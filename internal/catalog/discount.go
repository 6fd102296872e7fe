package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType says what a discount is assigned to.
type DiscountType string

const (
	DiscountAssignedToProducts   DiscountType = "assigned_to_products"
	DiscountAssignedToCategories DiscountType = "assigned_to_categories"
)

// Discount is a price reduction rule. Validity (date windows, coupon codes,
// usage limits) is owned by the discount-eligibility collaborator and is not
// recomputed by the pricing engine.
type Discount struct {
	ID            uuid.UUID
	Name          string
	Type          DiscountType
	UsePercentage bool
	Percentage    decimal.Decimal
	Amount        decimal.Decimal

	// MaxDiscountedQuantity caps how many units of a cart line the discount
	// applies to. Zero means no cap.
	MaxDiscountedQuantity int
}
