package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

// RentalPeriodCalculator converts a rental date range into a billing-period
// count for the product's configured period unit and length.
type RentalPeriodCalculator struct{}

// Periods returns how many billing periods the [start, end] range spans.
// Non-rental products bill a single period. An end before the start is treated
// as a single period rather than rejected, so a minor date-entry inconsistency
// does not fail a checkout. An unrecognized period unit is an error: billing
// periods must never be guessed.
func (RentalPeriodCalculator) Periods(product *catalog.Product, start, end time.Time) (int, error) {
	if product == nil {
		return 0, ErrNilProduct
	}
	if !product.IsRental {
		return 1, nil
	}
	if start.After(end) {
		return 1, nil
	}

	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}

	var unitDays int
	switch product.RentalPricePeriod {
	case catalog.RentalPeriodDays:
		unitDays = 1
	case catalog.RentalPeriodWeeks:
		unitDays = 7
	case catalog.RentalPeriodMonths:
		unitDays = 30
	case catalog.RentalPeriodYears:
		unitDays = 365
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedRentalPeriod, product.RentalPricePeriod)
	}

	length := product.RentalPriceLength
	if length < 1 {
		length = 1
	}
	periodDays := unitDays * length

	periods := days / periodDays
	if days%periodDays != 0 {
		periods++
	}
	if periods < 1 {
		periods = 1
	}
	return periods, nil
}
