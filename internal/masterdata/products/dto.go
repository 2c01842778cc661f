package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest creates a product together with its initial variants.
// A product with no variants is a valid committed state.
type CreateProductRequest struct {
	Code              string                 `json:"code" validate:"required,max=50"`
	Name              string                 `json:"name" validate:"required,max=200"`
	Description       *string                `json:"description,omitempty"`
	CategoryID        int64                  `json:"category_id" validate:"required,gt=0"`
	Price             decimal.Decimal        `json:"price"`
	DiscountPercent   decimal.Decimal        `json:"discount_percent"`
	DiscountStartDate *time.Time             `json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time             `json:"discount_end_date,omitempty"`
	Variants          []CreateVariantRequest `json:"variants" validate:"dive"`
}

// CreateVariantRequest adds one size/color combination. InitialQuantity > 0
// is booked as an ADJUSTMENT ledger entry so the stock invariant holds from
// the first unit.
type CreateVariantRequest struct {
	Size            string `json:"size" validate:"required,max=20"`
	Color           string `json:"color" validate:"required,max=50"`
	InitialQuantity int    `json:"initial_quantity" validate:"gte=0"`
}

// UpdateProductRequest replaces the mutable product fields.
type UpdateProductRequest struct {
	Code              string          `json:"code" validate:"required,max=50"`
	Name              string          `json:"name" validate:"required,max=200"`
	Description       *string         `json:"description,omitempty"`
	CategoryID        int64           `json:"category_id" validate:"required,gt=0"`
	Price             decimal.Decimal `json:"price"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	DiscountStartDate *time.Time      `json:"discount_start_date,omitempty"`
	DiscountEndDate   *time.Time      `json:"discount_end_date,omitempty"`
}

// UpdateVariantRequest renames a variant's size/color tuple.
type UpdateVariantRequest struct {
	Size  string `json:"size" validate:"required,max=20"`
	Color string `json:"color" validate:"required,max=50"`
}
