package analytics

import (
	"context"
	"fmt"

	"github.com/atelier-retail/atelier/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	SalesByPeriod(ctx context.Context, granularity string, filter RangeFilter) ([]PeriodRevenue, error)
	SalesByCategory(ctx context.Context, filter RangeFilter) ([]CategoryRevenue, error)
	InventoryValue(ctx context.Context) (InventoryValuation, error)
	TopCustomers(ctx context.Context, limit int, filter RangeFilter) ([]CustomerSpend, error)
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) SalesByPeriod(ctx context.Context, granularity string, filter RangeFilter) ([]PeriodRevenue, error) {
	switch granularity {
	case PeriodDay, PeriodMonth, PeriodYear:
	default:
		return nil, fmt.Errorf("%w: unknown period %q", shared.ErrValidation, granularity)
	}
	return s.repo.SalesByPeriod(ctx, granularity, filter)
}

func (s *Service) SalesByCategory(ctx context.Context, filter RangeFilter) ([]CategoryRevenue, error) {
	return s.repo.SalesByCategory(ctx, filter)
}

func (s *Service) InventoryValue(ctx context.Context) (InventoryValuation, error) {
	return s.repo.InventoryValue(ctx)
}

func (s *Service) TopCustomers(ctx context.Context, limit int, filter RangeFilter) ([]CustomerSpend, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopCustomers(ctx, limit, filter)
}
