package pricing

import "time"

// Settings is the immutable pricing policy handed to the engine at
// construction time.
type Settings struct {
	// IgnoreDiscounts administratively disables all discount selection.
	IgnoreDiscounts bool

	// CachePrices enables the price cache with the configured TTL. Rental
	// products are never cached regardless of this flag.
	CachePrices bool
	CacheTTL    time.Duration

	// RoundDuringCalculation rounds unit prices to CurrencyDecimals using
	// half-up rounding before they are composed into subtotals.
	RoundDuringCalculation bool
	CurrencyDecimals       int32

	// GroupTierPricesForDistinctCartLines sums quantities across a customer's
	// cart lines of the same product when resolving tier prices.
	GroupTierPricesForDistinctCartLines bool
}
