package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

// DiscountSelector filters the discounts applicable to a product for a
// customer and picks the single best one. Eligibility checks are delegated to
// the DiscountEligibility collaborator.
type DiscountSelector struct {
	Eligibility DiscountEligibility
	Categories  CategoryLookup
	Settings    Settings
}

// AllowedDiscounts collects the currently-eligible discounts for the product:
// discounts assigned directly to the product, plus discounts found on the
// product's categories. The category walk only runs when at least one
// category-assigned discount exists anywhere in the catalog, so the common
// no-category-discounts case stays cheap. Duplicates are suppressed by id.
func (s DiscountSelector) AllowedDiscounts(ctx context.Context, product *catalog.Product, customer *catalog.Customer) ([]catalog.Discount, error) {
	if product == nil {
		return nil, ErrNilProduct
	}
	if s.Settings.IgnoreDiscounts {
		return nil, nil
	}

	var allowed []catalog.Discount
	seen := map[uuid.UUID]struct{}{}

	add := func(d catalog.Discount) {
		if _, dup := seen[d.ID]; dup {
			return
		}
		seen[d.ID] = struct{}{}
		allowed = append(allowed, d)
	}

	if product.HasDiscountsApplied {
		for _, d := range product.AppliedDiscounts {
			if d.Type != catalog.DiscountAssignedToProducts {
				continue
			}
			ok, err := s.Eligibility.IsValid(ctx, d, customer)
			if err != nil {
				return nil, fmt.Errorf("check discount %s: %w", d.ID, err)
			}
			if ok {
				add(d)
			}
		}
	}

	exists, err := s.Eligibility.AnyOfType(ctx, catalog.DiscountAssignedToCategories)
	if err != nil {
		return nil, fmt.Errorf("category discount existence: %w", err)
	}
	if !exists {
		return allowed, nil
	}

	categories, err := s.Categories.CategoriesOf(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("categories of %s: %w", product.ID, err)
	}
	for _, category := range categories {
		if !category.HasDiscountsApplied {
			continue
		}
		for _, d := range category.AppliedDiscounts {
			if d.Type != catalog.DiscountAssignedToCategories {
				continue
			}
			ok, err := s.Eligibility.IsValid(ctx, d, customer)
			if err != nil {
				return nil, fmt.Errorf("check discount %s: %w", d.ID, err)
			}
			if ok {
				add(d)
			}
		}
	}
	return allowed, nil
}

// Preferred picks the discount yielding the largest absolute reduction against
// basePrice. Ties go to the first one encountered. The second return is false
// when the set is empty.
func (DiscountSelector) Preferred(discounts []catalog.Discount, basePrice decimal.Decimal) (catalog.Discount, bool) {
	var (
		best       catalog.Discount
		bestAmount decimal.Decimal
		found      bool
	)
	for _, d := range discounts {
		amount := AmountFor(d, basePrice)
		if !found || amount.GreaterThan(bestAmount) {
			best = d
			bestAmount = amount
			found = true
		}
	}
	return best, found
}

// AmountFor computes the absolute monetary reduction a discount yields on
// basePrice. Percentage discounts convert against basePrice; the reduction is
// clamped so the resulting price never goes negative.
func AmountFor(d catalog.Discount, basePrice decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	if d.UsePercentage {
		amount = basePrice.Mul(d.Percentage).Div(decimal.NewFromInt(100))
	} else {
		amount = d.Amount
	}
	if amount.GreaterThan(basePrice) {
		amount = basePrice
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
