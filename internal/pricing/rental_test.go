package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPeriodsNonRentalProduct(t *testing.T) {
	periods, err := RentalPeriodCalculator{}.Periods(&catalog.Product{}, day("2026-01-01"), day("2026-03-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if periods != 1 {
		t.Fatalf("expected 1 period, got %d", periods)
	}
}

func TestPeriodsSameDay(t *testing.T) {
	for _, unit := range []catalog.RentalPeriodUnit{catalog.RentalPeriodDays, catalog.RentalPeriodWeeks, catalog.RentalPeriodMonths, catalog.RentalPeriodYears} {
		product := &catalog.Product{IsRental: true, RentalPricePeriod: unit, RentalPriceLength: 1}
		periods, err := RentalPeriodCalculator{}.Periods(product, day("2026-05-10"), day("2026-05-10"))
		if err != nil {
			t.Fatalf("unit %s: unexpected error: %v", unit, err)
		}
		if periods != 1 {
			t.Fatalf("unit %s: expected 1 period for a same-day rental, got %d", unit, periods)
		}
	}
}

func TestPeriodsWeeklyTenDays(t *testing.T) {
	product := &catalog.Product{IsRental: true, RentalPricePeriod: catalog.RentalPeriodWeeks, RentalPriceLength: 1}
	periods, err := RentalPeriodCalculator{}.Periods(product, day("2026-05-01"), day("2026-05-11"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if periods != 2 {
		t.Fatalf("expected ceil(10/7) == 2 periods, got %d", periods)
	}
}

func TestPeriodsEndBeforeStart(t *testing.T) {
	product := &catalog.Product{IsRental: true, RentalPricePeriod: catalog.RentalPeriodDays, RentalPriceLength: 1}
	periods, err := RentalPeriodCalculator{}.Periods(product, day("2026-05-11"), day("2026-05-01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if periods != 1 {
		t.Fatalf("expected a single period when the end precedes the start, got %d", periods)
	}
}

func TestPeriodsUnsupportedUnit(t *testing.T) {
	product := &catalog.Product{IsRental: true, RentalPricePeriod: "fortnights", RentalPriceLength: 1}
	_, err := RentalPeriodCalculator{}.Periods(product, day("2026-05-01"), day("2026-05-11"))
	if !errors.Is(err, ErrUnsupportedRentalPeriod) {
		t.Fatalf("expected ErrUnsupportedRentalPeriod, got %v", err)
	}
}

func TestPeriodsMultiDayUnits(t *testing.T) {
	product := &catalog.Product{IsRental: true, RentalPricePeriod: catalog.RentalPeriodDays, RentalPriceLength: 3}
	periods, err := RentalPeriodCalculator{}.Periods(product, day("2026-05-01"), day("2026-05-08"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 7 days at 3-day billing: ceil(7/3) == 3.
	if periods != 3 {
		t.Fatalf("expected 3 periods, got %d", periods)
	}
}
