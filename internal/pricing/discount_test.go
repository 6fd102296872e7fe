package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

func TestAllowedDiscountsIgnoredGlobally(t *testing.T) {
	eligibility := newFakeEligibility()
	selector := DiscountSelector{
		Eligibility: eligibility,
		Categories:  &fakeCategories{},
		Settings:    Settings{IgnoreDiscounts: true},
	}
	product := &catalog.Product{
		ID:                  uuid.New(),
		HasDiscountsApplied: true,
		AppliedDiscounts: []catalog.Discount{
			{ID: uuid.New(), Type: catalog.DiscountAssignedToProducts, Amount: dec("10")},
		},
	}

	allowed, err := selector.AllowedDiscounts(context.Background(), product, &catalog.Customer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(allowed) != 0 {
		t.Fatalf("expected no discounts when administratively disabled, got %d", len(allowed))
	}
}

func TestAllowedDiscountsProductAndCategory(t *testing.T) {
	productDiscount := catalog.Discount{ID: uuid.New(), Type: catalog.DiscountAssignedToProducts, Amount: dec("10")}
	categoryDiscount := catalog.Discount{ID: uuid.New(), Type: catalog.DiscountAssignedToCategories, Amount: dec("5")}
	invalidDiscount := catalog.Discount{ID: uuid.New(), Type: catalog.DiscountAssignedToProducts, Amount: dec("50")}

	eligibility := newFakeEligibility()
	eligibility.register(productDiscount)
	eligibility.register(categoryDiscount)
	eligibility.register(invalidDiscount)
	eligibility.invalid[invalidDiscount.ID] = true

	productID := uuid.New()
	categories := &fakeCategories{byProduct: map[uuid.UUID][]catalog.Category{
		productID: {
			{ID: uuid.New(), HasDiscountsApplied: true, AppliedDiscounts: []catalog.Discount{categoryDiscount}},
			{ID: uuid.New(), HasDiscountsApplied: false, AppliedDiscounts: []catalog.Discount{{ID: uuid.New()}}},
		},
	}}

	selector := DiscountSelector{Eligibility: eligibility, Categories: categories}
	product := &catalog.Product{
		ID:                  productID,
		HasDiscountsApplied: true,
		AppliedDiscounts:    []catalog.Discount{productDiscount, invalidDiscount},
	}

	allowed, err := selector.AllowedDiscounts(context.Background(), product, &catalog.Customer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(allowed) != 2 {
		t.Fatalf("expected 2 allowed discounts, got %d", len(allowed))
	}
}

func TestAllowedDiscountsSkipsCategoryWalk(t *testing.T) {
	eligibility := newFakeEligibility()
	categories := &fakeCategories{}
	selector := DiscountSelector{Eligibility: eligibility, Categories: categories}

	_, err := selector.AllowedDiscounts(context.Background(), &catalog.Product{ID: uuid.New()}, &catalog.Customer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if categories.walks != 0 {
		t.Fatal("expected the category walk to be skipped when no category discounts exist")
	}
}

func TestAllowedDiscountsDeduplicates(t *testing.T) {
	shared := catalog.Discount{ID: uuid.New(), Type: catalog.DiscountAssignedToCategories, Amount: dec("5")}
	eligibility := newFakeEligibility()
	eligibility.register(shared)

	productID := uuid.New()
	categories := &fakeCategories{byProduct: map[uuid.UUID][]catalog.Category{
		productID: {
			{ID: uuid.New(), HasDiscountsApplied: true, AppliedDiscounts: []catalog.Discount{shared}},
			{ID: uuid.New(), HasDiscountsApplied: true, AppliedDiscounts: []catalog.Discount{shared}},
		},
	}}
	selector := DiscountSelector{Eligibility: eligibility, Categories: categories}

	allowed, err := selector.AllowedDiscounts(context.Background(), &catalog.Product{ID: productID}, &catalog.Customer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(allowed) != 1 {
		t.Fatalf("expected the shared discount once, got %d entries", len(allowed))
	}
}

func TestPreferredPicksLargestReduction(t *testing.T) {
	ten := catalog.Discount{ID: uuid.New(), Amount: dec("10")}
	fifteen := catalog.Discount{ID: uuid.New(), UsePercentage: true, Percentage: dec("15")}

	best, ok := DiscountSelector{}.Preferred([]catalog.Discount{ten, fifteen}, dec("100"))
	if !ok {
		t.Fatal("expected a preferred discount")
	}
	if best.ID != fifteen.ID {
		t.Fatal("expected the 15-unit reduction to win over the 10-unit one")
	}
}

func TestPreferredTieBreaksOnFirst(t *testing.T) {
	first := catalog.Discount{ID: uuid.New(), Amount: dec("10")}
	second := catalog.Discount{ID: uuid.New(), UsePercentage: true, Percentage: dec("10")}

	best, ok := DiscountSelector{}.Preferred([]catalog.Discount{first, second}, dec("100"))
	if !ok {
		t.Fatal("expected a preferred discount")
	}
	if best.ID != first.ID {
		t.Fatal("expected the first-encountered discount to win the tie")
	}
}

func TestPreferredEmptySet(t *testing.T) {
	if _, ok := (DiscountSelector{}).Preferred(nil, dec("100")); ok {
		t.Fatal("expected no preferred discount for an empty set")
	}
}

func TestAmountForClampsToBasePrice(t *testing.T) {
	oversized := catalog.Discount{ID: uuid.New(), Amount: dec("150")}
	amount := AmountFor(oversized, dec("100"))
	if !amount.Equal(dec("100")) {
		t.Fatalf("expected the reduction clamped to 100, got %s", amount)
	}

	negative := catalog.Discount{ID: uuid.New(), Amount: dec("-5")}
	if !AmountFor(negative, dec("100")).IsZero() {
		t.Fatal("expected a negative reduction to resolve to zero")
	}
}
