package products

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/atelier-retail/atelier/internal/inventory"
	mdshared "github.com/atelier-retail/atelier/internal/masterdata/shared"
	"github.com/atelier-retail/atelier/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages the product catalog. Creating a product with variants
// also seeds their inventory rows so stock reads never miss.
type Service struct {
	repo  Repository
	audit AuditPort
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Product, shared.Pagination, error) {
	if filters.Page <= 0 {
		filters.Page = mdshared.DefaultPage
	}
	if filters.Limit <= 0 {
		filters.Limit = mdshared.DefaultLimit
	}
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page, filters.Limit, total), nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: invalid product id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (Product, error) {
	if code == "" {
		return Product{}, fmt.Errorf("%w: product code is required", shared.ErrValidation)
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Search(ctx context.Context, term string) ([]Product, error) {
	return s.repo.Search(ctx, term)
}

// OnSale lists products whose discount window covers the current moment.
func (s *Service) OnSale(ctx context.Context) ([]Product, error) {
	return s.repo.OnSale(ctx, time.Now().UTC())
}

// Create inserts the product, its variants, their inventory rows, and any
// non-zero opening stock in one transaction. Opening stock is booked as an
// ADJUSTMENT so it shows in the ledger like every other movement.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	if err := s.validateProduct(req.Price, req.DiscountPercent, req.DiscountStartDate, req.DiscountEndDate); err != nil {
		return Product{}, err
	}
	if err := shared.Validate(req); err != nil {
		return Product{}, err
	}
	if err := validateVariantTuples(req.Variants); err != nil {
		return Product{}, err
	}

	now := time.Now().UTC()
	product := Product{
		Code:              req.Code,
		Name:              req.Name,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Price:             req.Price,
		DiscountPercent:   req.DiscountPercent,
		DiscountStartDate: req.DiscountStartDate,
		DiscountEndDate:   req.DiscountEndDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertProduct(ctx, product)
		if err != nil {
			return err
		}
		product.ID = id

		for _, v := range req.Variants {
			variantID, err := tx.InsertVariant(ctx, Variant{ProductID: id, Size: v.Size, Color: v.Color})
			if err != nil {
				return err
			}
			if err := tx.Ledger().InsertRow(ctx, variantID, now); err != nil {
				return err
			}
			if v.InitialQuantity > 0 {
				_, err := inventory.SetQuantityTx(ctx, tx.Ledger(), inventory.SetQuantityInput{
					VariantID:   variantID,
					NewQuantity: v.InitialQuantity,
					Type:        inventory.TransactionTypeAdjustment,
					Notes:       ptr("initial stock"),
				})
				if err != nil {
					return err
				}
			}
			product.Variants = append(product.Variants, Variant{
				ID:        variantID,
				ProductID: id,
				Size:      v.Size,
				Color:     v.Color,
				Quantity:  v.InitialQuantity,
			})
		}
		return nil
	})
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}

	s.recordAudit(ctx, "product:create", product.ID, map[string]any{"code": product.Code})
	return product, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", shared.ErrValidation)
	}
	if err := s.validateProduct(req.Price, req.DiscountPercent, req.DiscountStartDate, req.DiscountEndDate); err != nil {
		return err
	}
	if err := shared.Validate(req); err != nil {
		return err
	}
	err := s.repo.Update(ctx, id, Product{
		Code:              req.Code,
		Name:              req.Name,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Price:             req.Price,
		DiscountPercent:   req.DiscountPercent,
		DiscountStartDate: req.DiscountStartDate,
		DiscountEndDate:   req.DiscountEndDate,
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	s.recordAudit(ctx, "product:update", id, nil)
	return nil
}

// Delete removes a product with its variants and inventory rows. Blocked
// while any sale line references one of its variants.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", shared.ErrValidation)
	}
	count, err := s.repo.CountSaleItemsForProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("delete product: %w: %d sale items reference its variants", shared.ErrReferenced, count)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.recordAudit(ctx, "product:delete", id, nil)
	return nil
}

// AddVariant appends a size/color combination to an existing product and
// seeds its inventory row.
func (s *Service) AddVariant(ctx context.Context, productID int64, req CreateVariantRequest) (Variant, error) {
	if productID <= 0 {
		return Variant{}, fmt.Errorf("%w: invalid product id", shared.ErrValidation)
	}
	if err := shared.Validate(req); err != nil {
		return Variant{}, err
	}
	if _, err := s.repo.Get(ctx, productID); err != nil {
		return Variant{}, fmt.Errorf("add variant: %w", err)
	}
	existing, err := s.repo.FindVariant(ctx, productID, req.Size, req.Color)
	if err != nil {
		return Variant{}, fmt.Errorf("add variant: %w", err)
	}
	if existing != nil {
		return Variant{}, fmt.Errorf("add variant: %w: size %q color %q", shared.ErrDuplicate, req.Size, req.Color)
	}

	variant := Variant{ProductID: productID, Size: req.Size, Color: req.Color, Quantity: req.InitialQuantity}
	now := time.Now().UTC()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertVariant(ctx, variant)
		if err != nil {
			return err
		}
		variant.ID = id
		if err := tx.Ledger().InsertRow(ctx, id, now); err != nil {
			return err
		}
		if req.InitialQuantity > 0 {
			_, err := inventory.SetQuantityTx(ctx, tx.Ledger(), inventory.SetQuantityInput{
				VariantID:   id,
				NewQuantity: req.InitialQuantity,
				Type:        inventory.TransactionTypeAdjustment,
				Notes:       ptr("initial stock"),
			})
			return err
		}
		return nil
	})
	if err != nil {
		return Variant{}, fmt.Errorf("add variant: %w", err)
	}
	s.recordAudit(ctx, "variant:create", variant.ID, map[string]any{"product_id": productID})
	return variant, nil
}

func (s *Service) UpdateVariant(ctx context.Context, variantID int64, req UpdateVariantRequest) error {
	if variantID <= 0 {
		return fmt.Errorf("%w: invalid variant id", shared.ErrValidation)
	}
	if err := shared.Validate(req); err != nil {
		return err
	}
	current, err := s.repo.GetVariant(ctx, variantID)
	if err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	existing, err := s.repo.FindVariant(ctx, current.ProductID, req.Size, req.Color)
	if err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	if existing != nil && existing.ID != variantID {
		return fmt.Errorf("update variant: %w: size %q color %q", shared.ErrDuplicate, req.Size, req.Color)
	}
	if err := s.repo.UpdateVariant(ctx, variantID, req.Size, req.Color); err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	s.recordAudit(ctx, "variant:update", variantID, nil)
	return nil
}

// DeleteVariant removes a variant and its inventory row. Blocked while any
// sale line references it.
func (s *Service) DeleteVariant(ctx context.Context, variantID int64) error {
	if variantID <= 0 {
		return fmt.Errorf("%w: invalid variant id", shared.ErrValidation)
	}
	count, err := s.repo.CountSaleItemsForVariant(ctx, variantID)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("delete variant: %w: %d sale items reference it", shared.ErrReferenced, count)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteInventoryRow(ctx, variantID); err != nil {
			return err
		}
		return tx.DeleteVariant(ctx, variantID)
	})
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	s.recordAudit(ctx, "variant:delete", variantID, nil)
	return nil
}

func (s *Service) Variants(ctx context.Context, productID int64) ([]Variant, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: invalid product id", shared.ErrValidation)
	}
	return s.repo.VariantsOf(ctx, productID)
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "product",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
		At:       time.Now().UTC(),
	})
}

func ptr(s string) *string { return &s }
