package suppliers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/atelier-retail/atelier/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo  Repository
	audit AuditPort
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, fmt.Errorf("%w: invalid supplier id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Search(ctx context.Context, term string) ([]Supplier, error) {
	return s.repo.Search(ctx, term)
}

func (s *Service) Create(ctx context.Context, req CreateSupplierRequest) (Supplier, error) {
	if err := shared.Validate(req); err != nil {
		return Supplier{}, err
	}
	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	s.recordAudit(ctx, "supplier:create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateSupplierRequest) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid supplier id", shared.ErrValidation)
	}
	if err := shared.Validate(req); err != nil {
		return err
	}
	err := s.repo.Update(ctx, id, Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	})
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	s.recordAudit(ctx, "supplier:update", id)
	return nil
}

// Delete removes a supplier. Product associations go with it through the
// cascade; products themselves are untouched.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid supplier id", shared.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	s.recordAudit(ctx, "supplier:delete", id)
	return nil
}

// AddProduct links a supplier to a product it supplies. Duplicate links are
// rejected.
func (s *Service) AddProduct(ctx context.Context, supplierID, productID int64) error {
	if supplierID <= 0 || productID <= 0 {
		return fmt.Errorf("%w: invalid supplier or product id", shared.ErrValidation)
	}
	if err := s.repo.AddProduct(ctx, supplierID, productID); err != nil {
		return fmt.Errorf("add supplier product: %w", err)
	}
	return nil
}

func (s *Service) RemoveProduct(ctx context.Context, supplierID, productID int64) error {
	if supplierID <= 0 || productID <= 0 {
		return fmt.Errorf("%w: invalid supplier or product id", shared.ErrValidation)
	}
	if err := s.repo.RemoveProduct(ctx, supplierID, productID); err != nil {
		return fmt.Errorf("remove supplier product: %w", err)
	}
	return nil
}

func (s *Service) Products(ctx context.Context, supplierID int64) ([]SuppliedProduct, error) {
	if supplierID <= 0 {
		return nil, fmt.Errorf("%w: invalid supplier id", shared.ErrValidation)
	}
	return s.repo.ProductsOf(ctx, supplierID)
}

func (s *Service) SuppliersFor(ctx context.Context, productID int64) ([]Supplier, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: invalid product id", shared.ErrValidation)
	}
	return s.repo.SuppliersFor(ctx, productID)
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "supplier",
		EntityID: strconv.FormatInt(id, 10),
		At:       time.Now().UTC(),
	})
}
