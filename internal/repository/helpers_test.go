package repository

import (
	"context"
	"testing"

	"storefront/internal/database/dbtest"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/require"
)

// setupTestDB returns a pool on a migrated database with business tables emptied.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	pool := dbtest.Setup(t)
	dbtest.Truncate(t, pool,
		"order_audit_log", "discount_redemptions", "discount_codes",
		"order_items", "orders", "cart_items", "addresses", "products",
	)
	return pool
}

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// seedProducts inserts test products into the database.
func seedProducts(t *testing.T, pool *pgxpool.Pool, products []model.Product) {
	ctx := context.Background()

	query := `
		INSERT INTO products (id, name, price, category, available, stock_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, p := range products {
		_, err := pool.Exec(ctx, query, p.ID, p.Name, p.Price, p.Category, p.Available, p.StockQuantity, p.CreatedAt)
		require.NoError(t, err)
	}
}

// seedAddress saves an address for userID and returns its id.
func seedAddress(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) uuid.UUID {
	var id uuid.UUID
	err := pool.QueryRow(context.Background(), `
		INSERT INTO addresses (user_id, street, city, province, postal_code)
		VALUES ($1, '12 Long Street', 'Cape Town', 'Western Cape', '8001')
		RETURNING id
	`, userID).Scan(&id)
	require.NoError(t, err)
	return id
}
