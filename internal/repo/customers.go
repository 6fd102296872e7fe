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

const customerByIDSQL = `
SELECT id, store_id
FROM customers
WHERE id = $1`

const customerRolesSQL = `
SELECT role_id
FROM customer_roles
WHERE customer_id = $1
ORDER BY role_id`

// CustomerStore loads the customer identity the engine prices for.
type CustomerStore struct {
	Pool *pgxpool.Pool
}

// ByID loads a customer with their role memberships. A missing customer
// resolves to (nil, nil).
func (s *CustomerStore) ByID(ctx context.Context, id uuid.UUID) (*catalog.Customer, error) {
	var c catalog.Customer
	err := s.Pool.QueryRow(ctx, customerByIDSQL, id).Scan(&c.ID, &c.StoreID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load customer %s: %w", id, err)
	}

	rows, err := s.Pool.Query(ctx, customerRolesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("load roles of %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var role uuid.UUID
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		c.RoleIDs = append(c.RoleIDs, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}
