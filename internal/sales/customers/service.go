package customers

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

func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, fmt.Errorf("%w: invalid customer id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Search(ctx context.Context, term string) ([]Customer, error) {
	return s.repo.Search(ctx, term)
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	if err := shared.Validate(req); err != nil {
		return Customer{}, err
	}
	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, Customer{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Customer{}, fmt.Errorf("create customer: %w", err)
	}
	s.recordAudit(ctx, "customer:create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid customer id", shared.ErrValidation)
	}
	if err := shared.Validate(req); err != nil {
		return err
	}
	err := s.repo.Update(ctx, id, Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	s.recordAudit(ctx, "customer:update", id)
	return nil
}

// Delete removes a customer. Past sales survive with a null customer
// reference, so the sales record stays intact.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid customer id", shared.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	s.recordAudit(ctx, "customer:delete", id)
	return nil
}

// PurchaseHistory lists a customer's past sales, newest first.
func (s *Service) PurchaseHistory(ctx context.Context, customerID int64) ([]Purchase, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: invalid customer id", shared.ErrValidation)
	}
	if _, err := s.repo.Get(ctx, customerID); err != nil {
		return nil, fmt.Errorf("purchase history: %w", err)
	}
	return s.repo.Purchases(ctx, customerID)
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "customer",
		EntityID: strconv.FormatInt(id, 10),
		At:       time.Now().UTC(),
	})
}
