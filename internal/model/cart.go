package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a line in a signed-in customer's persisted cart.
type CartItem struct {
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"addedAt" db:"added_at"`
}

// DiscountType selects how a discount code's value is applied.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// DiscountCode is a promotional code redeemable at checkout.
type DiscountCode struct {
	Code           string       `json:"code" db:"code"`
	Type           DiscountType `json:"type" db:"discount_type"`
	Value          float64      `json:"value" db:"discount_value"`
	MinOrderAmount float64      `json:"minOrderAmount" db:"min_order_amount"`
	MaxUses        *int         `json:"maxUses,omitempty" db:"max_uses"`
	UsedCount      int          `json:"usedCount" db:"used_count"`
	StartsAt       time.Time    `json:"startsAt" db:"starts_at"`
	ExpiresAt      *time.Time   `json:"expiresAt,omitempty" db:"expires_at"`
	Active         bool         `json:"active" db:"active"`
}
