package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves a page of products matching filter, ordered by name.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil, nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)
}

// AddressRepository reads saved delivery addresses.
type AddressRepository interface {
	// GetByID retrieves an address. Returns nil, nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error)

	// BelongsToUser reports whether the address exists and is owned by userID.
	BelongsToUser(ctx context.Context, addressID, userID uuid.UUID) (bool, error)
}

// CartRepository manages persisted carts of signed-in customers.
type CartRepository interface {
	// ListByUser returns the user's cart lines, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// ClearByUser removes every cart line of the user within the provided transaction.
	ClearByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

// DiscountRepository validates and redeems discount codes.
type DiscountRepository interface {
	// Validate calls the validate_discount_code procedure.
	Validate(ctx context.Context, code string, userID *uuid.UUID, subtotal float64) (*model.DiscountValidation, error)

	// Redeem records the use of a code by an order within the provided transaction.
	Redeem(ctx context.Context, tx pgx.Tx, code string, orderID uuid.UUID, userID *uuid.UUID) error
}

// AuditRepository persists order audit log entries. Entries are append-only;
// Reclassify is the only mutation and runs under the correction flag.
type AuditRepository interface {
	// Append inserts a new entry.
	Append(ctx context.Context, entry *model.AuditLogEntry) error

	// GetByID retrieves an entry. Returns nil, nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.AuditLogEntry, error)

	// List returns entries matching the filter, newest first.
	List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLogEntry, error)

	// Reclassify changes the severity of an entry as an administrative correction.
	Reclassify(ctx context.Context, id uuid.UUID, severity model.AuditSeverity) error
}
