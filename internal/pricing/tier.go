package pricing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

// TierPriceResolver picks the best quantity-break price for a customer and
// quantity. It is stateless and safe for concurrent use.
type TierPriceResolver struct{}

// Resolve returns the price at the highest tier threshold not exceeding the
// requested quantity, after filtering tiers to those visible to the customer's
// store and roles. The second return is false when no tier qualifies or the
// product has no tiers; absence means "do not apply a tier override".
func (TierPriceResolver) Resolve(product *catalog.Product, customer *catalog.Customer, quantity int) (decimal.Decimal, bool) {
	if product == nil || len(product.TierPrices) == 0 {
		return decimal.Zero, false
	}

	visible := make([]catalog.TierPrice, 0, len(product.TierPrices))
	for _, tp := range product.TierPrices {
		if !tierVisible(tp, customer) {
			continue
		}
		visible = append(visible, tp)
	}
	if len(visible) == 0 {
		return decimal.Zero, false
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Quantity < visible[j].Quantity
	})

	// Collapse duplicate thresholds, last write wins.
	deduped := visible[:0]
	for _, tp := range visible {
		if n := len(deduped); n > 0 && deduped[n-1].Quantity == tp.Quantity {
			deduped[n-1] = tp
			continue
		}
		deduped = append(deduped, tp)
	}

	var (
		price    decimal.Decimal
		found    bool
		previous int
	)
	for _, tp := range deduped {
		if tp.Quantity > quantity {
			continue
		}
		// Guard against an inconsistent list handing back a lower threshold
		// after a higher one was already accepted.
		if tp.Quantity < previous {
			continue
		}
		previous = tp.Quantity
		price = tp.Price
		found = true
	}
	return price, found
}

func tierVisible(tp catalog.TierPrice, customer *catalog.Customer) bool {
	if tp.StoreID != uuid.Nil {
		if customer == nil || tp.StoreID != customer.StoreID {
			return false
		}
	}
	if tp.CustomerRoleID != uuid.Nil {
		if customer == nil {
			return false
		}
		member := false
		for _, role := range customer.RoleIDs {
			if role == tp.CustomerRoleID {
				member = true
				break
			}
		}
		if !member {
			return false
		}
	}
	return true
}
