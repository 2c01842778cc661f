package inventory

import (
	"context"
	"maps"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atelier-retail/atelier/internal/shared"
)

// fakeRepo keeps inventory rows and the ledger in memory. WithTx snapshots
// both so a failing callback observes rollback semantics.
type fakeRepo struct {
	rows   map[int64]Inventory
	ledger []Transaction
	nextID int64
}

func newFakeRepo(quantities map[int64]int) *fakeRepo {
	rows := make(map[int64]Inventory, len(quantities))
	var id int64
	for variantID, qty := range quantities {
		id++
		rows[variantID] = Inventory{ID: id, ProductVariantID: variantID, Quantity: qty, LastUpdated: time.Now().UTC()}
	}
	return &fakeRepo{rows: rows, nextID: id}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := maps.Clone(f.rows)
	ledgerLen := len(f.ledger)
	if err := fn(ctx, (*fakeTx)(f)); err != nil {
		f.rows = snapshot
		f.ledger = f.ledger[:ledgerLen]
		return err
	}
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, variantID int64) (Inventory, error) {
	inv, ok := f.rows[variantID]
	if !ok {
		return Inventory{}, shared.ErrNotFound
	}
	return inv, nil
}

func (f *fakeRepo) LowStock(ctx context.Context, threshold int) ([]StockItem, error) {
	var items []StockItem
	for _, inv := range f.rows {
		if inv.Quantity > 0 && inv.Quantity <= threshold {
			items = append(items, StockItem{VariantID: inv.ProductVariantID, Quantity: inv.Quantity})
		}
	}
	return items, nil
}

func (f *fakeRepo) OutOfStock(ctx context.Context) ([]StockItem, error) {
	var items []StockItem
	for _, inv := range f.rows {
		if inv.Quantity == 0 {
			items = append(items, StockItem{VariantID: inv.ProductVariantID})
		}
	}
	return items, nil
}

func (f *fakeRepo) StockByCategory(ctx context.Context) ([]CategoryStock, error) {
	return nil, nil
}

func (f *fakeRepo) Transactions(ctx context.Context, filter TransactionFilter) ([]TransactionEntry, error) {
	var entries []TransactionEntry
	for _, tx := range f.ledger {
		if filter.VariantID != nil && tx.ProductVariantID != *filter.VariantID {
			continue
		}
		entries = append(entries, TransactionEntry{Transaction: tx})
	}
	return entries, nil
}

type fakeTx fakeRepo

func (f *fakeTx) GetForUpdate(ctx context.Context, variantID int64) (Inventory, error) {
	return (*fakeRepo)(f).Get(ctx, variantID)
}

func (f *fakeTx) InsertRow(ctx context.Context, variantID int64, at time.Time) error {
	f.nextID++
	f.rows[variantID] = Inventory{ID: f.nextID, ProductVariantID: variantID, LastUpdated: at}
	return nil
}

func (f *fakeTx) UpdateQuantity(ctx context.Context, variantID int64, quantity int, at time.Time) error {
	inv, ok := f.rows[variantID]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Quantity = quantity
	inv.LastUpdated = at
	f.rows[variantID] = inv
	return nil
}

func (f *fakeTx) InsertTransaction(ctx context.Context, tx Transaction) (int64, error) {
	f.nextID++
	tx.ID = f.nextID
	f.ledger = append(f.ledger, tx)
	return tx.ID, nil
}

func TestSetQuantityAppendsLedgerEntry(t *testing.T) {
	repo := newFakeRepo(map[int64]int{1: 10})
	svc := NewService(repo, nil)

	entry, err := svc.SetQuantity(context.Background(), SetQuantityInput{
		VariantID:   1,
		NewQuantity: 4,
		Type:        TransactionTypeAdjustment,
	})
	require.NoError(t, err)
	require.Equal(t, -6, entry.QuantityChange)
	require.Equal(t, TransactionTypeAdjustment, entry.Type)

	inv, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 4, inv.Quantity)
	require.Len(t, repo.ledger, 1)
}

func TestSetQuantityRejectsNegative(t *testing.T) {
	repo := newFakeRepo(map[int64]int{1: 10})
	svc := NewService(repo, nil)

	_, err := svc.SetQuantity(context.Background(), SetQuantityInput{
		VariantID:   1,
		NewQuantity: -1,
		Type:        TransactionTypeAdjustment,
	})
	require.ErrorIs(t, err, ErrNegativeStock)

	// Nothing moved, nothing logged.
	inv, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 10, inv.Quantity)
	require.Empty(t, repo.ledger)
}

func TestAdjustBoundary(t *testing.T) {
	repo := newFakeRepo(map[int64]int{1: 3})
	svc := NewService(repo, nil)

	// Down to exactly zero is allowed.
	entry, err := svc.Adjust(context.Background(), 1, -3, nil)
	require.NoError(t, err)
	require.Equal(t, -3, entry.QuantityChange)

	// One below zero is not.
	_, err = svc.Adjust(context.Background(), 1, -1, nil)
	require.ErrorIs(t, err, ErrNegativeStock)

	inv, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 0, inv.Quantity)
	require.Len(t, repo.ledger, 1)
}

func TestAdjustUnknownVariant(t *testing.T) {
	svc := NewService(newFakeRepo(nil), nil)

	_, err := svc.Adjust(context.Background(), 99, 5, nil)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReceiveBooksPurchase(t *testing.T) {
	repo := newFakeRepo(map[int64]int{7: 2})
	svc := NewService(repo, nil)

	entry, err := svc.Receive(context.Background(), 7, 5, nil)
	require.NoError(t, err)
	require.Equal(t, 5, entry.QuantityChange)
	require.Equal(t, TransactionTypePurchase, entry.Type)

	inv, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, 7, inv.Quantity)
}

func TestReceiveRejectsNonPositive(t *testing.T) {
	svc := NewService(newFakeRepo(map[int64]int{7: 2}), nil)

	_, err := svc.Receive(context.Background(), 7, 0, nil)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestGetIsIdempotent(t *testing.T) {
	repo := newFakeRepo(map[int64]int{1: 10})
	svc := NewService(repo, nil)

	for i := 0; i < 3; i++ {
		inv, err := svc.Get(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, 10, inv.Quantity)
	}
	require.Empty(t, repo.ledger)
}

func TestQuantityEqualsLedgerSum(t *testing.T) {
	repo := newFakeRepo(map[int64]int{1: 0})
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Receive(ctx, 1, 10, nil)
	require.NoError(t, err)
	_, err = svc.Adjust(ctx, 1, -4, nil)
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, SetQuantityInput{VariantID: 1, NewQuantity: 9, Type: TransactionTypeAdjustment})
	require.NoError(t, err)

	sum := 0
	for _, tx := range repo.ledger {
		sum += tx.QuantityChange
	}
	inv, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, inv.Quantity, sum)
}
