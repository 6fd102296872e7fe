package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

const productByIDSQL = `
SELECT id, name, price, cost,
       special_price, special_price_start, special_price_end,
       customer_enters_price,
       is_rental, rental_price_length, rental_price_period,
       has_tier_prices, has_discounts_applied
FROM products
WHERE id = $1`

const tierPricesSQL = `
SELECT id, quantity, price, store_id, customer_role_id
FROM tier_prices
WHERE product_id = $1
ORDER BY quantity`

const productDiscountsSQL = `
SELECT d.id, d.name, d.discount_type, d.use_percentage, d.percentage, d.amount, d.max_discounted_quantity
FROM discounts d
JOIN product_discounts pd ON pd.discount_id = d.id
WHERE pd.product_id = $1`

const attributeValuesSQL = `
SELECT id, kind, price_adjustment, cost, bundled_product_id, quantity
FROM product_attribute_values
WHERE product_id = $1`

const combinationsSQL = `
SELECT id, value_ids, overridden_price
FROM product_combinations
WHERE product_id = $1`

// ProductStore loads products and their pricing-relevant relations.
type ProductStore struct {
	Pool *pgxpool.Pool
}

// ByID loads a product with its tier prices, applied discounts, attribute
// values and combinations. A missing product resolves to (nil, nil).
func (s *ProductStore) ByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var (
		p            catalog.Product
		special      pgtype.Numeric
		specialStart pgtype.Timestamptz
		specialEnd   pgtype.Timestamptz
	)
	row := s.Pool.QueryRow(ctx, productByIDSQL, id)
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Cost,
		&special, &specialStart, &specialEnd,
		&p.CustomerEntersPrice,
		&p.IsRental, &p.RentalPriceLength, &p.RentalPricePeriod,
		&p.HasTierPrices, &p.HasDiscountsApplied,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	if special.Valid {
		value, err := numericDecimal(special)
		if err != nil {
			return nil, fmt.Errorf("special price of %s: %w", id, err)
		}
		p.SpecialPrice = &value
	}
	if specialStart.Valid {
		t := specialStart.Time
		p.SpecialPriceStart = &t
	}
	if specialEnd.Valid {
		t := specialEnd.Time
		p.SpecialPriceEnd = &t
	}

	if p.HasTierPrices {
		if p.TierPrices, err = s.tierPrices(ctx, id); err != nil {
			return nil, err
		}
	}
	if p.HasDiscountsApplied {
		if p.AppliedDiscounts, err = s.productDiscounts(ctx, id); err != nil {
			return nil, err
		}
	}
	if p.AttributeValues, err = s.attributeValues(ctx, id); err != nil {
		return nil, err
	}
	if p.Combinations, err = s.combinations(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductStore) tierPrices(ctx context.Context, productID uuid.UUID) ([]catalog.TierPrice, error) {
	rows, err := s.Pool.Query(ctx, tierPricesSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("load tier prices of %s: %w", productID, err)
	}
	defer rows.Close()

	var tiers []catalog.TierPrice
	for rows.Next() {
		var (
			tp      catalog.TierPrice
			storeID pgtype.UUID
			roleID  pgtype.UUID
		)
		if err := rows.Scan(&tp.ID, &tp.Quantity, &tp.Price, &storeID, &roleID); err != nil {
			return nil, fmt.Errorf("scan tier price: %w", err)
		}
		if storeID.Valid {
			tp.StoreID = storeID.Bytes
		}
		if roleID.Valid {
			tp.CustomerRoleID = roleID.Bytes
		}
		tiers = append(tiers, tp)
	}
	return tiers, rows.Err()
}

func (s *ProductStore) productDiscounts(ctx context.Context, productID uuid.UUID) ([]catalog.Discount, error) {
	rows, err := s.Pool.Query(ctx, productDiscountsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("load discounts of %s: %w", productID, err)
	}
	defer rows.Close()
	return scanDiscounts(rows)
}

func (s *ProductStore) attributeValues(ctx context.Context, productID uuid.UUID) ([]catalog.AttributeValue, error) {
	rows, err := s.Pool.Query(ctx, attributeValuesSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("load attribute values of %s: %w", productID, err)
	}
	defer rows.Close()

	var values []catalog.AttributeValue
	for rows.Next() {
		var (
			v       catalog.AttributeValue
			bundled pgtype.UUID
		)
		if err := rows.Scan(&v.ID, &v.Kind, &v.PriceAdjustment, &v.Cost, &bundled, &v.Quantity); err != nil {
			return nil, fmt.Errorf("scan attribute value: %w", err)
		}
		if bundled.Valid {
			v.BundledProductID = bundled.Bytes
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *ProductStore) combinations(ctx context.Context, productID uuid.UUID) ([]catalog.Combination, error) {
	rows, err := s.Pool.Query(ctx, combinationsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("load combinations of %s: %w", productID, err)
	}
	defer rows.Close()

	var combinations []catalog.Combination
	for rows.Next() {
		var (
			c          catalog.Combination
			overridden pgtype.Numeric
		)
		if err := rows.Scan(&c.ID, &c.SelectedValueIDs, &overridden); err != nil {
			return nil, fmt.Errorf("scan combination: %w", err)
		}
		if overridden.Valid {
			value, err := numericDecimal(overridden)
			if err != nil {
				return nil, fmt.Errorf("overridden price: %w", err)
			}
			c.OverriddenPrice = &value
		}
		combinations = append(combinations, c)
	}
	return combinations, rows.Err()
}

func numericDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid || n.Int == nil {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, errors.New("numeric value is not finite")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
