package inventory

import (
	"errors"
	"time"
)

// TransactionType enumerates supported inventory movements.
type TransactionType string

const (
	// TransactionTypeSale represents a stock debit caused by a sale.
	TransactionTypeSale TransactionType = "SALE"
	// TransactionTypePurchase represents inbound stock from a supplier.
	TransactionTypePurchase TransactionType = "PURCHASE"
	// TransactionTypeAdjustment indicates a manual correction.
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	// TransactionTypeReturn represents stock restored by a cancelled sale.
	TransactionTypeReturn TransactionType = "RETURN"
)

// Inventory is the current on-hand quantity for one product variant.
// Exactly one row exists per variant; it is mutated only through the
// ledger funnel so that quantity always equals the signed sum of the
// variant's transactions.
type Inventory struct {
	ID               int64     `json:"id"`
	ProductVariantID int64     `json:"product_variant_id"`
	Quantity         int       `json:"quantity"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Transaction is one append-only ledger entry. Rows are never updated or
// deleted. ReferenceID is a historical pointer (e.g. a sale id) and may
// dangle once the referenced sale has been cancelled.
type Transaction struct {
	ID               int64           `json:"id"`
	ProductVariantID int64           `json:"product_variant_id"`
	QuantityChange   int             `json:"quantity_change"`
	Type             TransactionType `json:"transaction_type"`
	ReferenceID      *int64          `json:"reference_id,omitempty"`
	TransactionDate  time.Time       `json:"transaction_date"`
	Notes            *string         `json:"notes,omitempty"`
}

// TransactionEntry is a Transaction joined with catalog display fields for
// history listings.
type TransactionEntry struct {
	Transaction
	ProductName string `json:"product_name"`
	Size        string `json:"size"`
	Color       string `json:"color"`
}

// StockItem describes a variant with its product context in stock reports.
type StockItem struct {
	ProductID   int64  `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	VariantID   int64  `json:"variant_id"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Quantity    int    `json:"quantity"`
}

// CategoryStock aggregates stock per category.
type CategoryStock struct {
	Category string `json:"category"`
	Products int    `json:"products"`
	Units    int    `json:"units"`
}

// SetQuantityInput describes an absolute quantity write through the funnel.
type SetQuantityInput struct {
	VariantID   int64
	NewQuantity int
	Type        TransactionType
	ReferenceID *int64
	Notes       *string
}

// TransactionFilter narrows ledger history listings.
type TransactionFilter struct {
	VariantID *int64
	Type      *TransactionType
	From      time.Time
	To        time.Time
	Limit     int
}

// ErrNegativeStock is returned when a change would drive quantity below zero.
var ErrNegativeStock = errors.New("inventory: quantity cannot be negative")

// ErrInvalidQuantity indicates a non-positive movement quantity.
var ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
