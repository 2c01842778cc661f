package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product. Stock is never tracked at product
// level; it lives per variant in the inventory ledger.
type Product struct {
	ID                int64           `json:"id"`
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Description       *string         `json:"description,omitempty"`
	CategoryID        int64           `json:"category_id"`
	Price             decimal.Decimal `json:"price"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	DiscountStartDate *time.Time      `json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time      `json:"discount_end_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Variants          []Variant       `json:"variants,omitempty"`
}

// Variant is one size/color combination of a product, the unit stock is
// tracked against.
type Variant struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	// Quantity is populated from the inventory join on reads.
	Quantity int `json:"quantity"`
}
