package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

const categoriesOfSQL = `
SELECT c.id, c.name, c.has_discounts_applied
FROM categories c
JOIN product_categories pc ON pc.category_id = c.id
WHERE pc.product_id = $1`

const categoryDiscountsSQL = `
SELECT d.id, d.name, d.discount_type, d.use_percentage, d.percentage, d.amount, d.max_discounted_quantity
FROM discounts d
JOIN category_discounts cd ON cd.discount_id = d.id
WHERE cd.category_id = $1`

// CategoryStore resolves a product's category memberships with their discount
// surfaces.
type CategoryStore struct {
	Pool *pgxpool.Pool
}

// CategoriesOf returns the categories the product belongs to. Discounts are
// loaded only for categories flagged as carrying them.
func (s *CategoryStore) CategoriesOf(ctx context.Context, productID uuid.UUID) ([]catalog.Category, error) {
	rows, err := s.Pool.Query(ctx, categoriesOfSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("load categories of %s: %w", productID, err)
	}
	defer rows.Close()

	var categories []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.HasDiscountsApplied); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range categories {
		if !categories[i].HasDiscountsApplied {
			continue
		}
		discounts, err := s.categoryDiscounts(ctx, categories[i].ID)
		if err != nil {
			return nil, err
		}
		categories[i].AppliedDiscounts = discounts
	}
	return categories, nil
}

func (s *CategoryStore) categoryDiscounts(ctx context.Context, categoryID uuid.UUID) ([]catalog.Discount, error) {
	rows, err := s.Pool.Query(ctx, categoryDiscountsSQL, categoryID)
	if err != nil {
		return nil, fmt.Errorf("load discounts of category %s: %w", categoryID, err)
	}
	defer rows.Close()
	return scanDiscounts(rows)
}
