package service

import (
	"context"
	"time"

	"storefront/internal/archive"
	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService reads the storefront catalogue.
type ProductService interface {
	// List retrieves a page of products matching filter.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService defines read operations on placed orders.
type OrderService interface {
	// GetByID retrieves an order with its items and product details. Only
	// the owning customer or an admin may read an order.
	GetByID(ctx context.Context, id uuid.UUID, caller auth.Identity) (*model.OrderResponse, error)
}

// CheckoutService validates and places orders.
type CheckoutService interface {
	// GuestCheckout places an order for a customer without an account.
	GuestCheckout(ctx context.Context, req *model.GuestCheckoutRequest, meta model.RequestMeta) (*model.CheckoutResponse, error)

	// Checkout places an order for the signed-in customer on ctx.
	Checkout(ctx context.Context, req *model.CheckoutRequest, meta model.RequestMeta) (*model.CheckoutResponse, error)
}

// AuditService backs the admin audit dashboard and archive job.
type AuditService interface {
	// List returns audit entries matching the filter, newest first.
	List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLogEntry, error)

	// GetByID retrieves a single audit entry.
	GetByID(ctx context.Context, id uuid.UUID) (*model.AuditLogEntry, error)

	// Reclassify corrects the severity of an entry.
	Reclassify(ctx context.Context, id uuid.UUID, severity model.AuditSeverity) (*model.AuditLogEntry, error)

	// Archive exports the entries of [since, until) to the archive sink.
	Archive(ctx context.Context, since, until time.Time) (archive.Report, error)
}
