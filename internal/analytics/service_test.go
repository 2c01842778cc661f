package analytics

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/atelier-retail/atelier/internal/shared"
)

type fakeRepo struct {
	lastGranularity string
	lastLimit       int
}

func (f *fakeRepo) SalesByPeriod(ctx context.Context, granularity string, filter RangeFilter) ([]PeriodRevenue, error) {
	f.lastGranularity = granularity
	return []PeriodRevenue{{Period: "2026-01", SaleCount: 3, Revenue: decimal.NewFromInt(100)}}, nil
}

func (f *fakeRepo) SalesByCategory(ctx context.Context, filter RangeFilter) ([]CategoryRevenue, error) {
	return nil, nil
}

func (f *fakeRepo) InventoryValue(ctx context.Context) (InventoryValuation, error) {
	return InventoryValuation{}, nil
}

func (f *fakeRepo) TopCustomers(ctx context.Context, limit int, filter RangeFilter) ([]CustomerSpend, error) {
	f.lastLimit = limit
	return nil, nil
}

func TestSalesByPeriodValidatesGranularity(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.SalesByPeriod(context.Background(), "week", RangeFilter{})
	require.ErrorIs(t, err, shared.ErrValidation)

	out, err := svc.SalesByPeriod(context.Background(), PeriodMonth, RangeFilter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestTopCustomersDefaultsLimit(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.TopCustomers(context.Background(), 0, RangeFilter{})
	require.NoError(t, err)
	require.Equal(t, 10, repo.lastLimit)
}
