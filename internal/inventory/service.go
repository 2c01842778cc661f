package inventory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/atelier-retail/atelier/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, variantID int64) (Inventory, error)
	LowStock(ctx context.Context, threshold int) ([]StockItem, error)
	OutOfStock(ctx context.Context) ([]StockItem, error)
	StockByCategory(ctx context.Context) ([]CategoryStock, error)
	Transactions(ctx context.Context, filter TransactionFilter) ([]TransactionEntry, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates inventory operations. It is the single writer of
// stock quantities: every mutation, here or composed into another
// component's transaction, goes through SetQuantityTx.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Get returns current inventory for a variant.
func (s *Service) Get(ctx context.Context, variantID int64) (Inventory, error) {
	if variantID <= 0 {
		return Inventory{}, fmt.Errorf("%w: invalid variant id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, variantID)
}

// SetQuantity writes an absolute quantity and appends the matching ledger
// entry in one transaction.
func (s *Service) SetQuantity(ctx context.Context, input SetQuantityInput) (Transaction, error) {
	var entry Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = SetQuantityTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("inventory: set quantity: %w", err)
	}
	s.recordAudit(ctx, "inventory:"+string(input.Type), input.VariantID, entry.QuantityChange, input.Notes)
	return entry, nil
}

// Adjust applies a signed delta as a manual adjustment.
func (s *Service) Adjust(ctx context.Context, variantID int64, delta int, notes *string) (Transaction, error) {
	if delta == 0 {
		return Transaction{}, ErrInvalidQuantity
	}
	var entry Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, variantID)
		if err != nil {
			return err
		}
		newQty := current.Quantity + delta
		if newQty < 0 {
			return ErrNegativeStock
		}
		entry, err = SetQuantityTx(ctx, tx, SetQuantityInput{
			VariantID:   variantID,
			NewQuantity: newQty,
			Type:        TransactionTypeAdjustment,
			Notes:       notes,
		})
		return err
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("inventory: adjust: %w", err)
	}
	s.recordAudit(ctx, "inventory:ADJUSTMENT", variantID, delta, notes)
	return entry, nil
}

// Receive books inbound stock from a supplier delivery as a PURCHASE.
func (s *Service) Receive(ctx context.Context, variantID int64, quantity int, notes *string) (Transaction, error) {
	if quantity <= 0 {
		return Transaction{}, ErrInvalidQuantity
	}
	var entry Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, variantID)
		if err != nil {
			return err
		}
		entry, err = SetQuantityTx(ctx, tx, SetQuantityInput{
			VariantID:   variantID,
			NewQuantity: current.Quantity + quantity,
			Type:        TransactionTypePurchase,
			Notes:       notes,
		})
		return err
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("inventory: receive: %w", err)
	}
	s.recordAudit(ctx, "inventory:PURCHASE", variantID, quantity, notes)
	return entry, nil
}

// LowStock lists variants at or below the threshold, excluding empty ones.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]StockItem, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must be >= 0", shared.ErrValidation)
	}
	return s.repo.LowStock(ctx, threshold)
}

// OutOfStock lists variants with zero quantity.
func (s *Service) OutOfStock(ctx context.Context) ([]StockItem, error) {
	return s.repo.OutOfStock(ctx)
}

// StockByCategory aggregates stock per category.
func (s *Service) StockByCategory(ctx context.Context) ([]CategoryStock, error) {
	return s.repo.StockByCategory(ctx)
}

// Transactions lists ledger history.
func (s *Service) Transactions(ctx context.Context, filter TransactionFilter) ([]TransactionEntry, error) {
	return s.repo.Transactions(ctx, filter)
}

// SetQuantityTx is the one primitive that changes stock. It computes the
// delta against the current row (read FOR UPDATE), writes the new quantity
// and appends the ledger entry, all against the caller's transaction. The
// sales engine and the catalog store compose it so their debits, credits and
// initial-stock writes commit or roll back with the rest of their workflow.
func SetQuantityTx(ctx context.Context, tx TxRepository, input SetQuantityInput) (Transaction, error) {
	if input.NewQuantity < 0 {
		return Transaction{}, ErrNegativeStock
	}
	current, err := tx.GetForUpdate(ctx, input.VariantID)
	if err != nil {
		return Transaction{}, fmt.Errorf("variant %d: %w", input.VariantID, err)
	}

	now := time.Now().UTC()
	if err := tx.UpdateQuantity(ctx, input.VariantID, input.NewQuantity, now); err != nil {
		return Transaction{}, err
	}

	entry := Transaction{
		ProductVariantID: input.VariantID,
		QuantityChange:   input.NewQuantity - current.Quantity,
		Type:             input.Type,
		ReferenceID:      input.ReferenceID,
		TransactionDate:  now,
		Notes:            input.Notes,
	}
	entry.ID, err = tx.InsertTransaction(ctx, entry)
	if err != nil {
		return Transaction{}, err
	}
	return entry, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, variantID int64, qty int, notes *string) {
	if s.audit == nil {
		return
	}
	meta := map[string]any{"variant_id": variantID, "qty": qty}
	if notes != nil {
		meta["notes"] = *notes
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "inventory",
		EntityID: strconv.FormatInt(variantID, 10),
		Meta:     meta,
	})
}
