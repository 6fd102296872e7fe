package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

// optionPayload is the serialized option-selection format JSONPayloadParser
// understands.
type optionPayload struct {
	Values []optionSelection `json:"values"`
}

type optionSelection struct {
	ValueID  uuid.UUID `json:"value_id"`
	Quantity int       `json:"quantity,omitempty"`
}

// JSONPayloadParser resolves a JSON option-selection payload against the
// product's own attribute values and combinations. It is the in-repo
// implementation of the OptionPayloadParser contract; callers with another
// payload format supply their own parser.
type JSONPayloadParser struct{}

// ParseValues decodes the payload and returns the selected attribute values.
// Selections referencing values the product does not carry are skipped. A
// positive payload quantity overrides the value's configured quantity.
func (JSONPayloadParser) ParseValues(_ context.Context, product *catalog.Product, payload string) ([]catalog.AttributeValue, error) {
	if product == nil {
		return nil, ErrNilProduct
	}
	selections, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	if len(selections) == 0 {
		return nil, nil
	}

	byID := make(map[uuid.UUID]catalog.AttributeValue, len(product.AttributeValues))
	for _, value := range product.AttributeValues {
		byID[value.ID] = value
	}

	values := make([]catalog.AttributeValue, 0, len(selections))
	for _, sel := range selections {
		value, ok := byID[sel.ValueID]
		if !ok {
			continue
		}
		if sel.Quantity > 0 {
			value.Quantity = sel.Quantity
		}
		values = append(values, value)
	}
	return values, nil
}

// ResolveCombination finds the product combination whose selected value set
// matches the payload exactly. Order does not matter. Returns nil when no
// combination matches or the payload is empty.
func (JSONPayloadParser) ResolveCombination(_ context.Context, product *catalog.Product, payload string) (*catalog.Combination, error) {
	if product == nil {
		return nil, ErrNilProduct
	}
	selections, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	if len(selections) == 0 || len(product.Combinations) == 0 {
		return nil, nil
	}

	selected := make([]uuid.UUID, 0, len(selections))
	for _, sel := range selections {
		selected = append(selected, sel.ValueID)
	}
	want := idSetKey(selected)

	for i := range product.Combinations {
		if idSetKey(product.Combinations[i].SelectedValueIDs) == want {
			combination := product.Combinations[i]
			return &combination, nil
		}
	}
	return nil, nil
}

func decodePayload(payload string) ([]optionSelection, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, nil
	}
	var decoded optionPayload
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil, fmt.Errorf("decode option payload: %w", err)
	}
	return decoded.Values, nil
}

func idSetKey(ids []uuid.UUID) string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}
