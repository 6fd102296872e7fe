package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

// DiscountStore answers discount eligibility and lookup queries.
type DiscountStore struct {
	Pool *pgxpool.Pool
}

const discountByIDSQL = `
SELECT id, name, discount_type, use_percentage, percentage, amount, max_discounted_quantity
FROM discounts
WHERE id = $1`

const discountValidSQL = `
SELECT enabled
       AND (valid_from IS NULL OR valid_from <= now())
       AND (valid_to IS NULL OR valid_to >= now())
FROM discounts
WHERE id = $1`

const anyDiscountOfTypeSQL = `
SELECT EXISTS (
    SELECT 1 FROM discounts
    WHERE discount_type = $1 AND enabled
)`

// IsValid reports whether the discount is currently usable for the customer.
// It checks the enabled flag and the validity window; richer eligibility
// (coupon codes, usage limits) belongs to the system that owns those records.
func (s *DiscountStore) IsValid(ctx context.Context, d catalog.Discount, _ *catalog.Customer) (bool, error) {
	var valid bool
	err := s.Pool.QueryRow(ctx, discountValidSQL, d.ID).Scan(&valid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check discount %s: %w", d.ID, err)
	}
	return valid, nil
}

// AnyOfType reports whether any enabled discount of the given type exists.
// The selector uses it to skip the per-category walk when the catalog carries
// no category discounts at all.
func (s *DiscountStore) AnyOfType(ctx context.Context, t catalog.DiscountType) (bool, error) {
	var exists bool
	if err := s.Pool.QueryRow(ctx, anyDiscountOfTypeSQL, t).Scan(&exists); err != nil {
		return false, fmt.Errorf("discount existence check: %w", err)
	}
	return exists, nil
}

// ByID resolves a discount by id. A missing discount resolves to (nil, nil).
func (s *DiscountStore) ByID(ctx context.Context, id uuid.UUID) (*catalog.Discount, error) {
	rows, err := s.Pool.Query(ctx, discountByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("load discount %s: %w", id, err)
	}
	defer rows.Close()

	discounts, err := scanDiscounts(rows)
	if err != nil {
		return nil, err
	}
	if len(discounts) == 0 {
		return nil, nil
	}
	return &discounts[0], nil
}

func scanDiscounts(rows pgx.Rows) ([]catalog.Discount, error) {
	var discounts []catalog.Discount
	for rows.Next() {
		var d catalog.Discount
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.UsePercentage, &d.Percentage, &d.Amount, &d.MaxDiscountedQuantity); err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}
		discounts = append(discounts, d)
	}
	return discounts, rows.Err()
}
