package model

import (
	"time"

	"github.com/google/uuid"
)

// Address is a delivery address saved against a user account.
type Address struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"userId" db:"user_id"`
	Street     string    `json:"street" db:"street"`
	City       string    `json:"city" db:"city"`
	Province   string    `json:"province" db:"province"`
	PostalCode string    `json:"postalCode" db:"postal_code"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// DiscountValidation is the response of the discount-code validation procedure.
type DiscountValidation struct {
	Valid          bool     `json:"valid"`
	Error          *string  `json:"error,omitempty"`
	DiscountAmount *float64 `json:"discount_amount,omitempty"`
}
