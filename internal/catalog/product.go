package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalPeriodUnit enumerates the supported billing period units for rental products.
type RentalPeriodUnit string

const (
	RentalPeriodDays   RentalPeriodUnit = "days"
	RentalPeriodWeeks  RentalPeriodUnit = "weeks"
	RentalPeriodMonths RentalPeriodUnit = "months"
	RentalPeriodYears  RentalPeriodUnit = "years"
)

// Product is a sellable catalog item. It is a read-only input to the pricing
// engine; the engine never mutates it.
type Product struct {
	ID    uuid.UUID
	Name  string
	Price decimal.Decimal
	Cost  decimal.Decimal

	// Special price replaces the base price inside its validity window.
	// It is independent of discounts.
	SpecialPrice      *decimal.Decimal
	SpecialPriceStart *time.Time
	SpecialPriceEnd   *time.Time

	CustomerEntersPrice bool

	IsRental          bool
	RentalPriceLength int
	RentalPricePeriod RentalPeriodUnit

	HasTierPrices bool
	TierPrices    []TierPrice

	HasDiscountsApplied bool
	AppliedDiscounts    []Discount

	AttributeValues []AttributeValue
	Combinations    []Combination
}

// SpecialPriceActive reports whether the time-boxed special price applies at
// the given instant. Nil bounds leave that side of the window open.
func (p *Product) SpecialPriceActive(now time.Time) bool {
	if p.SpecialPrice == nil {
		return false
	}
	if p.SpecialPriceStart != nil && now.Before(*p.SpecialPriceStart) {
		return false
	}
	if p.SpecialPriceEnd != nil && now.After(*p.SpecialPriceEnd) {
		return false
	}
	return true
}

// TierPrice binds a price to a minimum purchase quantity, optionally scoped to
// a store and a customer role.
type TierPrice struct {
	ID       uuid.UUID
	Quantity int
	Price    decimal.Decimal

	// Zero-value ids mean "no scope restriction".
	StoreID        uuid.UUID
	CustomerRoleID uuid.UUID
}

// AttributeAdjustmentKind selects which of an attribute value's price fields is
// meaningful.
type AttributeAdjustmentKind string

const (
	// AdjustmentSimple means the value contributes its flat PriceAdjustment.
	AdjustmentSimple AttributeAdjustmentKind = "simple"
	// AdjustmentBundledProduct means the value references another sellable
	// product whose own final price contributes to the parent's price.
	AdjustmentBundledProduct AttributeAdjustmentKind = "bundled_product"
)

// AttributeValue is one selected option value of a product attribute.
type AttributeValue struct {
	ID              uuid.UUID
	Kind            AttributeAdjustmentKind
	PriceAdjustment decimal.Decimal
	Cost            decimal.Decimal

	// Meaningful only for bundled values.
	BundledProductID uuid.UUID
	Quantity         int
}

// Combination is a fully specified set of option selections that may carry its
// own price, overriding the computed one.
type Combination struct {
	ID               uuid.UUID
	SelectedValueIDs []uuid.UUID
	OverriddenPrice  *decimal.Decimal
}

// Category is a catalog grouping a product belongs to. Only the discount
// surface is relevant to pricing.
type Category struct {
	ID                  uuid.UUID
	Name                string
	HasDiscountsApplied bool
	AppliedDiscounts    []Discount
}
