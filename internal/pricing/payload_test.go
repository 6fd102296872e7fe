package pricing

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

func TestParseValuesMatchesProductValues(t *testing.T) {
	known, unknown := uuid.New(), uuid.New()
	product := &catalog.Product{
		AttributeValues: []catalog.AttributeValue{
			{ID: known, Kind: catalog.AdjustmentSimple, PriceAdjustment: dec("5"), Quantity: 1},
		},
	}
	payload := `{"values":[{"value_id":"` + known.String() + `","quantity":3},{"value_id":"` + unknown.String() + `"}]}`

	values, err := JSONPayloadParser{}.ParseValues(context.Background(), product, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("expected the unknown selection skipped, got %d values", len(values))
	}
	if values[0].ID != known {
		t.Fatalf("expected value %s, got %s", known, values[0].ID)
	}
	if values[0].Quantity != 3 {
		t.Fatalf("expected the payload quantity to override, got %d", values[0].Quantity)
	}
}

func TestParseValuesEmptyPayload(t *testing.T) {
	values, err := JSONPayloadParser{}.ParseValues(context.Background(), &catalog.Product{}, "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values != nil {
		t.Fatalf("expected no values, got %v", values)
	}
}

func TestParseValuesMalformedPayload(t *testing.T) {
	if _, err := (JSONPayloadParser{}).ParseValues(context.Background(), &catalog.Product{}, "{not json"); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestResolveCombinationExactSetAnyOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	override := dec("42")
	product := &catalog.Product{
		Combinations: []catalog.Combination{
			{ID: uuid.New(), SelectedValueIDs: []uuid.UUID{a}},
			{ID: uuid.New(), SelectedValueIDs: []uuid.UUID{a, b}, OverriddenPrice: &override},
		},
	}
	payload := `{"values":[{"value_id":"` + b.String() + `"},{"value_id":"` + a.String() + `"}]}`

	combination, err := JSONPayloadParser{}.ResolveCombination(context.Background(), product, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if combination == nil || combination.OverriddenPrice == nil || !combination.OverriddenPrice.Equal(override) {
		t.Fatalf("expected the two-value combination, got %+v", combination)
	}
}

func TestResolveCombinationNoMatch(t *testing.T) {
	a := uuid.New()
	product := &catalog.Product{
		Combinations: []catalog.Combination{
			{ID: uuid.New(), SelectedValueIDs: []uuid.UUID{a, uuid.New()}},
		},
	}
	payload := `{"values":[{"value_id":"` + a.String() + `"}]}`

	combination, err := JSONPayloadParser{}.ResolveCombination(context.Background(), product, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if combination != nil {
		t.Fatalf("expected a partial selection not to match, got %+v", combination)
	}
}
