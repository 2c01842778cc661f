package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodTransfer   PaymentMethod = "TRANSFER"
)

// Sale is a committed sale with its line items. CustomerID is a weak
// reference: deleting the customer nulls it without touching the sale.
type Sale struct {
	ID            int64           `json:"id"`
	ReceiptCode   string          `json:"receipt_code"`
	CustomerID    *int64          `json:"customer_id,omitempty"`
	CustomerName  *string         `json:"customer_name,omitempty"`
	SaleDate      time.Time       `json:"sale_date"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []SaleItem      `json:"items,omitempty"`
}

// SaleItem freezes price and discount at sale time; it never re-reads the
// live product price.
type SaleItem struct {
	ID               int64           `json:"id"`
	SaleID           int64           `json:"sale_id"`
	ProductVariantID int64           `json:"product_variant_id"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountPercent  decimal.Decimal `json:"discount_percent"`
	Subtotal         decimal.Decimal `json:"subtotal"`

	// Display fields populated by joined reads.
	ProductName string `json:"product_name,omitempty"`
	ProductCode string `json:"product_code,omitempty"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
}

// CreateSaleRequest describes a new sale. Monetary fields are validated in
// the service since validator tags cannot compare decimals.
type CreateSaleRequest struct {
	CustomerID    *int64                  `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	PaymentMethod PaymentMethod           `json:"payment_method" validate:"required,oneof=CASH CREDIT_CARD TRANSFER"`
	Items         []CreateSaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateSaleItemRequest is one requested line.
type CreateSaleItemRequest struct {
	VariantID       int64           `json:"variant_id" validate:"required,gt=0"`
	Quantity        int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// ListFilter narrows sale listings.
type ListFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

// PaymentMethodTotal aggregates sales per payment method.
type PaymentMethodTotal struct {
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Count         int             `json:"count"`
	Total         decimal.Decimal `json:"total"`
}

// ProductSales ranks a product by units sold.
type ProductSales struct {
	ProductID     int64           `json:"product_id"`
	ProductCode   string          `json:"product_code"`
	ProductName   string          `json:"product_name"`
	Category      string          `json:"category"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	SaleCount     int             `json:"sale_count"`
}

// TopProductsFilter narrows the top-sellers ranking.
type TopProductsFilter struct {
	Limit int
	From  time.Time
	To    time.Time
}
