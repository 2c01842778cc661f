package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period granularities for revenue aggregation.
const (
	PeriodDay   = "day"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// PeriodRevenue is aggregated revenue for one bucket of the chosen
// granularity.
type PeriodRevenue struct {
	Period    string          `json:"period"`
	SaleCount int             `json:"sale_count"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// CategoryRevenue is revenue attributed to one category through its sold
// variants.
type CategoryRevenue struct {
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	UnitsSold    int             `json:"units_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// CategoryValue is the stock valuation of one category at current prices.
type CategoryValue struct {
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Units        int             `json:"units"`
	Value        decimal.Decimal `json:"value"`
}

// InventoryValuation is current stock valued at list prices.
type InventoryValuation struct {
	TotalUnits  int             `json:"total_units"`
	TotalValue  decimal.Decimal `json:"total_value"`
	ByCategory  []CategoryValue `json:"by_category"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// CustomerSpend ranks a customer by total spend.
type CustomerSpend struct {
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	SaleCount    int             `json:"sale_count"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
}

// RangeFilter bounds a report by sale date. Zero values leave the bound
// open.
type RangeFilter struct {
	From time.Time
	To   time.Time
}
