package model

import "strings"

// DraftKind discriminates the two shapes of an order draft.
type DraftKind string

const (
	DraftKindGuest         DraftKind = "guest"
	DraftKindAuthenticated DraftKind = "authenticated"
)

// CustomerInfo holds the contact details captured for a guest order.
type CustomerInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// DeliveryAddress is an address captured inline for a guest order.
type DeliveryAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
}

// GuestDetails is the guest variant payload of an order draft.
type GuestDetails struct {
	Customer CustomerInfo    `json:"customer_info"`
	Address  DeliveryAddress `json:"delivery_address"`
}

// AccountDetails is the authenticated variant payload of an order draft.
type AccountDetails struct {
	UserID    string `json:"user_id"`
	AddressID string `json:"address_id"`
}

// DraftItem is a cart line as captured by the storefront.
type DraftItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
}

// OrderDraft is the in-memory representation of a prospective order.
// Exactly one of Guest or Account is set, according to Kind.
type OrderDraft struct {
	Kind           DraftKind       `json:"kind"`
	Guest          *GuestDetails   `json:"guest,omitempty"`
	Account        *AccountDetails `json:"account,omitempty"`
	Items          []DraftItem     `json:"cart_items"`
	DeliveryMethod string          `json:"delivery_method"`
	DeliveryFee    float64         `json:"delivery_fee"`
	Subtotal       float64         `json:"subtotal"`
	DiscountCode   *string         `json:"discount_code,omitempty"`
	DiscountAmount float64         `json:"discount_amount"`
	Total          float64         `json:"total"`
}

// OrderTotals are the monetary and delivery fields shared by both draft shapes.
type OrderTotals struct {
	Items          []DraftItem `json:"cart_items"`
	DeliveryMethod string      `json:"delivery_method"`
	DeliveryFee    float64     `json:"delivery_fee"`
	Subtotal       float64     `json:"subtotal"`
	DiscountCode   *string     `json:"discount_code,omitempty"`
	DiscountAmount float64     `json:"discount_amount"`
	Total          float64     `json:"total"`
}

// NewGuestDraft builds a guest draft.
func NewGuestDraft(guest GuestDetails, totals OrderTotals) OrderDraft {
	d := draftFromTotals(totals)
	d.Kind = DraftKindGuest
	d.Guest = &guest
	return d
}

// NewAuthenticatedDraft builds a draft for a signed-in customer.
func NewAuthenticatedDraft(account AccountDetails, totals OrderTotals) OrderDraft {
	d := draftFromTotals(totals)
	d.Kind = DraftKindAuthenticated
	d.Account = &account
	return d
}

func draftFromTotals(t OrderTotals) OrderDraft {
	return OrderDraft{
		Items:          t.Items,
		DeliveryMethod: t.DeliveryMethod,
		DeliveryFee:    t.DeliveryFee,
		Subtotal:       t.Subtotal,
		DiscountCode:   t.DiscountCode,
		DiscountAmount: t.DiscountAmount,
		Total:          t.Total,
	}
}

// IsGuest reports whether the draft is the guest variant.
func (d *OrderDraft) IsGuest() bool {
	return d.Kind == DraftKindGuest && d.Guest != nil
}

// IsAuthenticated reports whether the draft is the authenticated variant.
func (d *OrderDraft) IsAuthenticated() bool {
	return d.Kind == DraftKindAuthenticated && d.Account != nil
}

// HasDiscountCode reports whether a non-blank discount code was supplied.
func (d *OrderDraft) HasDiscountCode() bool {
	return d.DiscountCode != nil && strings.TrimSpace(*d.DiscountCode) != ""
}

// UserID returns the account user id, or "" for guest drafts.
func (d *OrderDraft) UserID() string {
	if d.Account == nil {
		return ""
	}
	return d.Account.UserID
}
