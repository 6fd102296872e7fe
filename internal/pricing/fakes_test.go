package pricing

import (
	"context"

	"github.com/google/uuid"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

type fakeEligibility struct {
	invalid     map[uuid.UUID]bool
	categoryAny bool
	discounts   map[uuid.UUID]*catalog.Discount
}

func newFakeEligibility() *fakeEligibility {
	return &fakeEligibility{
		invalid:   map[uuid.UUID]bool{},
		discounts: map[uuid.UUID]*catalog.Discount{},
	}
}

func (f *fakeEligibility) register(d catalog.Discount) {
	copied := d
	f.discounts[d.ID] = &copied
	if d.Type == catalog.DiscountAssignedToCategories {
		f.categoryAny = true
	}
}

func (f *fakeEligibility) IsValid(_ context.Context, d catalog.Discount, _ *catalog.Customer) (bool, error) {
	return !f.invalid[d.ID], nil
}

func (f *fakeEligibility) AnyOfType(_ context.Context, t catalog.DiscountType) (bool, error) {
	if t == catalog.DiscountAssignedToCategories {
		return f.categoryAny, nil
	}
	return len(f.discounts) > 0, nil
}

func (f *fakeEligibility) ByID(_ context.Context, id uuid.UUID) (*catalog.Discount, error) {
	return f.discounts[id], nil
}

type fakeCategories struct {
	byProduct map[uuid.UUID][]catalog.Category
	walks     int
}

func (f *fakeCategories) CategoriesOf(_ context.Context, productID uuid.UUID) ([]catalog.Category, error) {
	f.walks++
	if f.byProduct == nil {
		return nil, nil
	}
	return f.byProduct[productID], nil
}

type fakeProducts struct {
	byID map[uuid.UUID]*catalog.Product
}

func (f *fakeProducts) ByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if f.byID == nil {
		return nil, nil
	}
	return f.byID[id], nil
}

type fakeCart struct {
	lines []catalog.CartLine
}

func (f *fakeCart) LinesFor(_ context.Context, customerID uuid.UUID, cartType catalog.CartType, productID uuid.UUID) ([]catalog.CartLine, error) {
	var out []catalog.CartLine
	for _, line := range f.lines {
		if line.CustomerID == customerID && line.CartType == cartType && line.ProductID == productID {
			out = append(out, line)
		}
	}
	return out, nil
}

type countingMetrics struct {
	hits         int
	misses       int
	bypasses     int
	computations int
}

func (m *countingMetrics) CacheHit()    { m.hits++ }
func (m *countingMetrics) CacheMiss()   { m.misses++ }
func (m *countingMetrics) CacheBypass() { m.bypasses++ }
func (m *countingMetrics) Computation() { m.computations++ }
