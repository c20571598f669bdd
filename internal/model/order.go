package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a persisted order.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Order represents a customer order.
type Order struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	UserID           *uuid.UUID  `json:"userId,omitempty" db:"user_id"`
	AddressID        *uuid.UUID  `json:"addressId,omitempty" db:"address_id"`
	CustomerName     *string     `json:"customerName,omitempty" db:"customer_name"`
	CustomerEmail    *string     `json:"customerEmail,omitempty" db:"customer_email"`
	CustomerPhone    *string     `json:"customerPhone,omitempty" db:"customer_phone"`
	Street           *string     `json:"street,omitempty" db:"street"`
	City             *string     `json:"city,omitempty" db:"city"`
	Province         *string     `json:"province,omitempty" db:"province"`
	PostalCode       *string     `json:"postalCode,omitempty" db:"postal_code"`
	DeliveryMethod   string      `json:"deliveryMethod" db:"delivery_method"`
	DeliveryFee      float64     `json:"deliveryFee" db:"delivery_fee"`
	Subtotal         float64     `json:"subtotal" db:"subtotal"`
	DiscountCode     *string     `json:"discountCode,omitempty" db:"discount_code"`
	DiscountAmount   float64     `json:"discountAmount" db:"discount_amount"`
	Total            float64     `json:"total" db:"total"`
	Status           OrderStatus `json:"status" db:"status"`
	PaymentReference string      `json:"paymentReference" db:"payment_reference"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unitPrice" db:"unit_price"`
}

// CheckoutItemRequest represents a single cart line in a checkout request.
type CheckoutItemRequest struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// CheckoutTotalsRequest holds the fields shared by both checkout requests.
type CheckoutTotalsRequest struct {
	Items          []CheckoutItemRequest `json:"items"`
	DeliveryMethod string                `json:"deliveryMethod"`
	DeliveryFee    float64               `json:"deliveryFee"`
	Subtotal       float64               `json:"subtotal"`
	DiscountCode   *string               `json:"discountCode,omitempty"`
	DiscountAmount float64               `json:"discountAmount"`
	Total          float64               `json:"total"`
}

// GuestCheckoutRequest represents the payload for POST /api/checkout/guest.
type GuestCheckoutRequest struct {
	CheckoutTotalsRequest
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
}

// CheckoutRequest represents the payload for POST /api/checkout.
type CheckoutRequest struct {
	CheckoutTotalsRequest
	UserID    string `json:"userId"`
	AddressID string `json:"addressId"`
}

// Totals converts the shared request fields into draft totals.
func (r *CheckoutTotalsRequest) Totals() OrderTotals {
	items := make([]DraftItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = DraftItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		}
	}
	return OrderTotals{
		Items:          items,
		DeliveryMethod: r.DeliveryMethod,
		DeliveryFee:    r.DeliveryFee,
		Subtotal:       r.Subtotal,
		DiscountCode:   r.DiscountCode,
		DiscountAmount: r.DiscountAmount,
		Total:          r.Total,
	}
}

// Draft builds the guest order draft for validation.
func (r *GuestCheckoutRequest) Draft() OrderDraft {
	return NewGuestDraft(GuestDetails{
		Customer: CustomerInfo{
			FullName: r.FullName,
			Email:    r.Email,
			Phone:    r.Phone,
		},
		Address: DeliveryAddress{
			Street:     r.Street,
			City:       r.City,
			Province:   r.Province,
			PostalCode: r.PostalCode,
		},
	}, r.Totals())
}

// Draft builds the authenticated order draft for validation.
func (r *CheckoutRequest) Draft() OrderDraft {
	return NewAuthenticatedDraft(AccountDetails{
		UserID:    r.UserID,
		AddressID: r.AddressID,
	}, r.Totals())
}

// PaymentInstructions tell the customer how to settle a manual (EFT) payment.
type PaymentInstructions struct {
	BankName      string  `json:"bankName"`
	AccountHolder string  `json:"accountHolder"`
	AccountNumber string  `json:"accountNumber"`
	BranchCode    string  `json:"branchCode"`
	Reference     string  `json:"reference"`
	Amount        float64 `json:"amount"`
	Message       string  `json:"message"`
}

// CheckoutResponse represents the response payload for a successful checkout.
type CheckoutResponse struct {
	OrderID  uuid.UUID           `json:"orderId"`
	Status   OrderStatus         `json:"status"`
	Total    float64             `json:"total"`
	Warnings []ValidationError   `json:"warnings"`
	Payment  PaymentInstructions `json:"payment"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order    Order       `json:"order"`
	Items    []OrderItem `json:"items"`
	Products []Product   `json:"products"`
}

// RequestMeta carries caller details captured at the HTTP boundary.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
