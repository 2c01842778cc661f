package suppliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atelier-retail/atelier/internal/shared"
)

type link struct{ supplierID, productID int64 }

type fakeRepo struct {
	byID   map[int64]Supplier
	links  map[link]struct{}
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[int64]Supplier), links: make(map[link]struct{})}
}

func (f *fakeRepo) List(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	for _, s := range f.byID {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Supplier, error) {
	s, ok := f.byID[id]
	if !ok {
		return Supplier{}, shared.ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) Search(ctx context.Context, term string) ([]Supplier, error) {
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	f.nextID++
	supplier.ID = f.nextID
	f.byID[supplier.ID] = supplier
	return supplier, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, supplier Supplier) error {
	if _, ok := f.byID[id]; !ok {
		return shared.ErrNotFound
	}
	supplier.ID = id
	f.byID[id] = supplier
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.byID, id)
	for l := range f.links {
		if l.supplierID == id {
			delete(f.links, l)
		}
	}
	return nil
}

func (f *fakeRepo) AddProduct(ctx context.Context, supplierID, productID int64) error {
	l := link{supplierID, productID}
	if _, ok := f.links[l]; ok {
		return shared.ErrDuplicate
	}
	f.links[l] = struct{}{}
	return nil
}

func (f *fakeRepo) RemoveProduct(ctx context.Context, supplierID, productID int64) error {
	l := link{supplierID, productID}
	if _, ok := f.links[l]; !ok {
		return shared.ErrNotFound
	}
	delete(f.links, l)
	return nil
}

func (f *fakeRepo) ProductsOf(ctx context.Context, supplierID int64) ([]SuppliedProduct, error) {
	var out []SuppliedProduct
	for l := range f.links {
		if l.supplierID == supplierID {
			out = append(out, SuppliedProduct{ProductID: l.productID})
		}
	}
	return out, nil
}

func (f *fakeRepo) SuppliersFor(ctx context.Context, productID int64) ([]Supplier, error) {
	var out []Supplier
	for l := range f.links {
		if l.productID == productID {
			out = append(out, f.byID[l.supplierID])
		}
	}
	return out, nil
}

func strptr(s string) *string { return &s }

func TestCreateSupplierRequiresPhone(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), CreateSupplierRequest{Name: "Textiles del Norte"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateSupplierRejectsBadEmail(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), CreateSupplierRequest{
		Name:  "Textiles del Norte",
		Phone: "5559001001",
		Email: strptr("not-an-email"),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestSupplierProductLinks(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateSupplierRequest{Name: "Moda Express", Phone: "5559002002"})
	require.NoError(t, err)

	require.NoError(t, svc.AddProduct(ctx, s.ID, 7))

	// Linking the same pair twice is rejected.
	err = svc.AddProduct(ctx, s.ID, 7)
	require.ErrorIs(t, err, shared.ErrDuplicate)

	products, err := svc.Products(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)

	require.NoError(t, svc.RemoveProduct(ctx, s.ID, 7))
	err = svc.RemoveProduct(ctx, s.ID, 7)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteSupplierKeepsNothingLinked(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateSupplierRequest{Name: "Moda Express", Phone: "5559002002"})
	require.NoError(t, err)
	require.NoError(t, svc.AddProduct(ctx, s.ID, 7))

	require.NoError(t, svc.Delete(ctx, s.ID))
	require.Empty(t, repo.links)
}
