package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atelier-retail/atelier/internal/shared"
)

type fakeRepo struct {
	byID      map[int64]Customer
	purchases map[int64][]Purchase
	nextID    int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[int64]Customer), purchases: make(map[int64][]Purchase)}
}

func (f *fakeRepo) List(ctx context.Context) ([]Customer, error) {
	var out []Customer
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Customer, error) {
	c, ok := f.byID[id]
	if !ok {
		return Customer{}, shared.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) Search(ctx context.Context, term string) ([]Customer, error) {
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, customer Customer) (Customer, error) {
	if customer.Email != nil {
		for _, c := range f.byID {
			if c.Email != nil && *c.Email == *customer.Email {
				return Customer{}, shared.ErrDuplicate
			}
		}
	}
	f.nextID++
	customer.ID = f.nextID
	f.byID[customer.ID] = customer
	return customer, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, customer Customer) error {
	if _, ok := f.byID[id]; !ok {
		return shared.ErrNotFound
	}
	customer.ID = id
	f.byID[id] = customer
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRepo) Purchases(ctx context.Context, customerID int64) ([]Purchase, error) {
	return f.purchases[customerID], nil
}

func strptr(s string) *string { return &s }

func TestCreateCustomer(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	c, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Juan Perez"})
	require.NoError(t, err)
	require.NotZero(t, c.ID)
	require.Nil(t, c.Email)
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCustomerRequest{Name: "Juan Perez", Email: strptr("juan@example.com")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateCustomerRequest{Name: "Juana Perez", Email: strptr("juan@example.com")})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCreateCustomerRejectsBadEmail(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), CreateCustomerRequest{Name: "Juan Perez", Email: strptr("nope")})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPurchaseHistoryUnknownCustomer(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.PurchaseHistory(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPurchaseHistory(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCustomerRequest{Name: "Maria Garcia"})
	require.NoError(t, err)
	repo.purchases[c.ID] = []Purchase{{SaleID: 1, ReceiptCode: "r-1"}, {SaleID: 2, ReceiptCode: "r-2"}}

	history, err := svc.PurchaseHistory(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestDeleteCustomer(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateCustomerRequest{Name: "Carlos Lopez"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.Get(ctx, c.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
