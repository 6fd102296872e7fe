package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

const cartLinesSQL = `
SELECT id, customer_id, product_id, cart_type, quantity,
       attributes_payload, customer_entered_price, rental_start, rental_end
FROM cart_lines
WHERE customer_id = $1 AND cart_type = $2 AND product_id = $3`

// CartStore reads a customer's cart lines for tier quantity grouping.
type CartStore struct {
	Pool *pgxpool.Pool
}

// LinesFor returns the customer's cart lines of the given type for a product.
func (s *CartStore) LinesFor(ctx context.Context, customerID uuid.UUID, cartType catalog.CartType, productID uuid.UUID) ([]catalog.CartLine, error) {
	rows, err := s.Pool.Query(ctx, cartLinesSQL, customerID, cartType, productID)
	if err != nil {
		return nil, fmt.Errorf("load cart lines: %w", err)
	}
	defer rows.Close()

	var lines []catalog.CartLine
	for rows.Next() {
		var (
			line        catalog.CartLine
			rentalStart pgtype.Timestamptz
			rentalEnd   pgtype.Timestamptz
		)
		err := rows.Scan(
			&line.ID, &line.CustomerID, &line.ProductID, &line.CartType, &line.Quantity,
			&line.AttributesPayload, &line.CustomerEnteredPrice, &rentalStart, &rentalEnd,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		if rentalStart.Valid {
			t := rentalStart.Time
			line.RentalStart = &t
		}
		if rentalEnd.Valid {
			t := rentalEnd.Time
			line.RentalEnd = &t
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
