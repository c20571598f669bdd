package model

import "time"

// Product represents an item in the storefront catalogue.
type Product struct {
	ID        string  `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Price     float64 `json:"price" db:"price"`
	Category  string  `json:"category" db:"category"`
	Available bool    `json:"available" db:"available"`
	// StockQuantity is nil when stock is not tracked for the product.
	StockQuantity *int      `json:"stockQuantity,omitempty" db:"stock_quantity"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// TracksStock reports whether stock levels are enforced for the product.
func (p *Product) TracksStock() bool {
	return p.StockQuantity != nil
}

// ProductFilter narrows the catalogue listing.
type ProductFilter struct {
	Category      string
	AvailableOnly bool
	Limit         int
	Offset        int
}
