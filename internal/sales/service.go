package sales

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atelier-retail/atelier/internal/inventory"
	"github.com/atelier-retail/atelier/internal/shared"
)

// StockReader provides the read-only inventory lookups used for
// pre-validation before any write happens.
type StockReader interface {
	Get(ctx context.Context, variantID int64) (inventory.Inventory, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates sale creation and cancellation. It is the only
// component allowed to move stock as a side effect of a sale, and it does so
// exclusively through the inventory ledger funnel inside its own
// transaction.
type Service struct {
	repo  Repository
	stock StockReader
	audit AuditPort
}

// NewService builds Service.
func NewService(repo Repository, stock StockReader, audit AuditPort) *Service {
	return &Service{repo: repo, stock: stock, audit: audit}
}

var hundred = decimal.NewFromInt(100)

// Create validates stock for every line before writing anything, then
// inserts the sale, its items and the matching SALE ledger debits as one
// atomic unit. Prices and discounts are frozen from the request, never
// re-read from the catalog.
func (s *Service) Create(ctx context.Context, req CreateSaleRequest) (int64, error) {
	if err := shared.Validate(req); err != nil {
		return 0, fmt.Errorf("create sale: %w", err)
	}
	for _, item := range req.Items {
		if item.UnitPrice.IsNegative() {
			return 0, fmt.Errorf("create sale: %w: unit price must be >= 0", shared.ErrValidation)
		}
		if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(hundred) {
			return 0, fmt.Errorf("create sale: %w: discount percent must be between 0 and 100", shared.ErrValidation)
		}
	}

	// Stock check for every line before any write. A variant without an
	// inventory row is reported as not found, distinct from insufficient
	// stock.
	for _, item := range req.Items {
		inv, err := s.stock.Get(ctx, item.VariantID)
		if err != nil {
			return 0, fmt.Errorf("create sale: variant %d: %w", item.VariantID, err)
		}
		if inv.Quantity < item.Quantity {
			return 0, fmt.Errorf("create sale: %w", &shared.InsufficientStockError{
				VariantID: item.VariantID,
				Available: inv.Quantity,
				Requested: item.Quantity,
			})
		}
	}

	total := decimal.Zero
	subtotals := make([]decimal.Decimal, len(req.Items))
	for i, item := range req.Items {
		subtotals[i] = lineSubtotal(item.Quantity, item.UnitPrice, item.DiscountPercent)
		total = total.Add(subtotals[i])
	}

	sale := Sale{
		ReceiptCode:   uuid.NewString(),
		CustomerID:    req.CustomerID,
		SaleDate:      time.Now().UTC(),
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   total,
	}

	var saleID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		saleID, err = tx.InsertSale(ctx, sale)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		ledger := tx.Ledger()
		for i, item := range req.Items {
			_, err := tx.InsertItem(ctx, SaleItem{
				SaleID:           saleID,
				ProductVariantID: item.VariantID,
				Quantity:         item.Quantity,
				UnitPrice:        item.UnitPrice,
				DiscountPercent:  item.DiscountPercent,
				Subtotal:         subtotals[i],
			})
			if err != nil {
				return fmt.Errorf("insert sale item: %w", err)
			}

			// Re-read FOR UPDATE inside the transaction; the pre-check
			// above is advisory once another connection is in play.
			current, err := ledger.GetForUpdate(ctx, item.VariantID)
			if err != nil {
				return fmt.Errorf("variant %d: %w", item.VariantID, err)
			}
			if current.Quantity < item.Quantity {
				return &shared.InsufficientStockError{
					VariantID: item.VariantID,
					Available: current.Quantity,
					Requested: item.Quantity,
				}
			}
			_, err = inventory.SetQuantityTx(ctx, ledger, inventory.SetQuantityInput{
				VariantID:   item.VariantID,
				NewQuantity: current.Quantity - item.Quantity,
				Type:        inventory.TransactionTypeSale,
				ReferenceID: &saleID,
				Notes:       notesFor("sale", saleID),
			})
			if err != nil {
				return fmt.Errorf("debit stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create sale: %w", err)
	}

	s.recordAudit(ctx, "sales:create", saleID, map[string]any{
		"receipt_code": sale.ReceiptCode,
		"total":        total.String(),
		"items":        len(req.Items),
	})
	return saleID, nil
}

// Cancel reverses a sale: one RETURN ledger credit per item, then hard
// deletion of the items and the sale, as one atomic unit. The RETURN
// transactions keep referencing the deleted sale id as a historical pointer.
func (s *Service) Cancel(ctx context.Context, saleID int64) error {
	sale, err := s.repo.Get(ctx, saleID)
	if err != nil {
		return fmt.Errorf("cancel sale: %w", err)
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ledger := tx.Ledger()
		for _, item := range sale.Items {
			current, err := ledger.GetForUpdate(ctx, item.ProductVariantID)
			if err != nil {
				return fmt.Errorf("variant %d: %w", item.ProductVariantID, err)
			}
			_, err = inventory.SetQuantityTx(ctx, ledger, inventory.SetQuantityInput{
				VariantID:   item.ProductVariantID,
				NewQuantity: current.Quantity + item.Quantity,
				Type:        inventory.TransactionTypeReturn,
				ReferenceID: &saleID,
				Notes:       notesFor("sale cancellation", saleID),
			})
			if err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}
		if err := tx.DeleteItems(ctx, saleID); err != nil {
			return fmt.Errorf("delete sale items: %w", err)
		}
		if err := tx.DeleteSale(ctx, saleID); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cancel sale: %w", err)
	}

	s.recordAudit(ctx, "sales:cancel", saleID, map[string]any{
		"receipt_code": sale.ReceiptCode,
		"items":        len(sale.Items),
	})
	return nil
}

// Get returns one sale with items and display names.
func (s *Service) Get(ctx context.Context, saleID int64) (*Sale, error) {
	if saleID <= 0 {
		return nil, fmt.Errorf("%w: invalid sale id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, saleID)
}

// List returns sales filtered by date, newest first, without items.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	return s.repo.List(ctx, filter)
}

// TotalsByPaymentMethod aggregates sale counts and totals per method.
func (s *Service) TotalsByPaymentMethod(ctx context.Context, from, to time.Time) ([]PaymentMethodTotal, error) {
	return s.repo.TotalsByPaymentMethod(ctx, from, to)
}

// TopSellingProducts ranks products by units sold.
func (s *Service) TopSellingProducts(ctx context.Context, filter TopProductsFilter) ([]ProductSales, error) {
	return s.repo.TopSellingProducts(ctx, filter)
}

// lineSubtotal computes quantity x unit price x (1 - discount/100), rounded
// to cents.
func lineSubtotal(quantity int, unitPrice, discountPercent decimal.Decimal) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return gross.Mul(hundred.Sub(discountPercent)).Div(hundred).Round(2)
}

func notesFor(kind string, saleID int64) *string {
	n := fmt.Sprintf("%s #%d", kind, saleID)
	return &n
}

func (s *Service) recordAudit(ctx context.Context, action string, saleID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "sale",
		EntityID: strconv.FormatInt(saleID, 10),
		Meta:     meta,
	})
}
