package sales

import (
	"context"
	"maps"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/atelier-retail/atelier/internal/inventory"
	"github.com/atelier-retail/atelier/internal/shared"
)

// fakeStore holds sales, items, inventory rows and the ledger in memory.
// WithTx snapshots everything so a failing callback observes rollback
// semantics, which is what the atomicity tests rely on.
type fakeStore struct {
	sales  map[int64]Sale
	items  map[int64][]SaleItem
	stock  map[int64]inventory.Inventory
	ledger []inventory.Transaction
	nextID int64
}

func newFakeStore(quantities map[int64]int) *fakeStore {
	f := &fakeStore{
		sales: make(map[int64]Sale),
		items: make(map[int64][]SaleItem),
		stock: make(map[int64]inventory.Inventory),
	}
	for variantID, qty := range quantities {
		f.nextID++
		f.stock[variantID] = inventory.Inventory{
			ID:               f.nextID,
			ProductVariantID: variantID,
			Quantity:         qty,
			LastUpdated:      time.Now().UTC(),
		}
	}
	return f
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	salesSnap := maps.Clone(f.sales)
	itemsSnap := make(map[int64][]SaleItem, len(f.items))
	for id, items := range f.items {
		itemsSnap[id] = slices.Clone(items)
	}
	stockSnap := maps.Clone(f.stock)
	ledgerLen := len(f.ledger)

	if err := fn(ctx, (*fakeTx)(f)); err != nil {
		f.sales = salesSnap
		f.items = itemsSnap
		f.stock = stockSnap
		f.ledger = f.ledger[:ledgerLen]
		return err
	}
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*Sale, error) {
	sale, ok := f.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	sale.Items = slices.Clone(f.items[id])
	return &sale, nil
}

func (f *fakeStore) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	var out []Sale
	for _, sale := range f.sales {
		out = append(out, sale)
	}
	return out, nil
}

func (f *fakeStore) TotalsByPaymentMethod(ctx context.Context, from, to time.Time) ([]PaymentMethodTotal, error) {
	return nil, nil
}

func (f *fakeStore) TopSellingProducts(ctx context.Context, filter TopProductsFilter) ([]ProductSales, error) {
	return nil, nil
}

// StockReader used by the service's pre-validation.
func (f *fakeStore) StockGet(ctx context.Context, variantID int64) (inventory.Inventory, error) {
	inv, ok := f.stock[variantID]
	if !ok {
		return inventory.Inventory{}, shared.ErrNotFound
	}
	return inv, nil
}

type stockReader struct{ store *fakeStore }

func (r stockReader) Get(ctx context.Context, variantID int64) (inventory.Inventory, error) {
	return r.store.StockGet(ctx, variantID)
}

type fakeTx fakeStore

func (f *fakeTx) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	f.nextID++
	sale.ID = f.nextID
	f.sales[sale.ID] = sale
	return sale.ID, nil
}

func (f *fakeTx) InsertItem(ctx context.Context, item SaleItem) (int64, error) {
	f.nextID++
	item.ID = f.nextID
	f.items[item.SaleID] = append(f.items[item.SaleID], item)
	return item.ID, nil
}

func (f *fakeTx) DeleteItems(ctx context.Context, saleID int64) error {
	delete(f.items, saleID)
	return nil
}

func (f *fakeTx) DeleteSale(ctx context.Context, saleID int64) error {
	if _, ok := f.sales[saleID]; !ok {
		return shared.ErrNotFound
	}
	delete(f.sales, saleID)
	return nil
}

func (f *fakeTx) Ledger() inventory.TxRepository {
	return (*fakeLedger)(f)
}

type fakeLedger fakeStore

func (f *fakeLedger) GetForUpdate(ctx context.Context, variantID int64) (inventory.Inventory, error) {
	return (*fakeStore)(f).StockGet(ctx, variantID)
}

func (f *fakeLedger) InsertRow(ctx context.Context, variantID int64, at time.Time) error {
	f.nextID++
	f.stock[variantID] = inventory.Inventory{ID: f.nextID, ProductVariantID: variantID, LastUpdated: at}
	return nil
}

func (f *fakeLedger) UpdateQuantity(ctx context.Context, variantID int64, quantity int, at time.Time) error {
	inv, ok := f.stock[variantID]
	if !ok {
		return shared.ErrNotFound
	}
	inv.Quantity = quantity
	inv.LastUpdated = at
	f.stock[variantID] = inv
	return nil
}

func (f *fakeLedger) InsertTransaction(ctx context.Context, tx inventory.Transaction) (int64, error) {
	f.nextID++
	tx.ID = f.nextID
	f.ledger = append(f.ledger, tx)
	return tx.ID, nil
}

func newTestService(quantities map[int64]int) (*Service, *fakeStore) {
	store := newFakeStore(quantities)
	return NewService(store, stockReader{store}, nil), store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateSaleDebitsStockAndTotals(t *testing.T) {
	svc, store := newTestService(map[int64]int{1: 10})
	ctx := context.Background()

	saleID, err := svc.Create(ctx, CreateSaleRequest{
		PaymentMethod: PaymentMethodCash,
		Items: []CreateSaleItemRequest{
			{VariantID: 1, Quantity: 4, UnitPrice: dec("10.00")},
			{VariantID: 1, Quantity: 2, UnitPrice: dec("25.00"), DiscountPercent: dec("20")},
		},
	})
	require.NoError(t, err)

	sale, err := svc.Get(ctx, saleID)
	require.NoError(t, err)
	// 4*10.00 + 2*25.00*0.80 = 40.00 + 40.00
	require.True(t, sale.TotalAmount.Equal(dec("80.00")), "total %s", sale.TotalAmount)
	require.NotEmpty(t, sale.ReceiptCode)
	require.Len(t, sale.Items, 2)

	require.Equal(t, 4, store.stock[1].Quantity)

	// Two lines, two SALE debits referencing the sale.
	require.Len(t, store.ledger, 2)
	for _, tx := range store.ledger {
		require.Equal(t, inventory.TransactionTypeSale, tx.Type)
		require.NotNil(t, tx.ReferenceID)
		require.Equal(t, saleID, *tx.ReferenceID)
	}
	require.Equal(t, -6, store.ledger[0].QuantityChange+store.ledger[1].QuantityChange)
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	svc, store := newTestService(map[int64]int{1: 3})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateSaleRequest{
		PaymentMethod: PaymentMethodCash,
		Items:         []CreateSaleItemRequest{{VariantID: 1, Quantity: 5, UnitPrice: dec("10.00")}},
	})

	var insufficient *shared.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, int64(1), insufficient.VariantID)
	require.Equal(t, 3, insufficient.Available)
	require.Equal(t, 5, insufficient.Requested)

	// Nothing written, nothing moved.
	require.Empty(t, store.sales)
	require.Empty(t, store.ledger)
	require.Equal(t, 3, store.stock[1].Quantity)
}

// staleReader reports a stale quantity for one variant, simulating another
// connection draining stock between the pre-check and the transaction.
type staleReader struct {
	store     *fakeStore
	variantID int64
	quantity  int
}

func (r staleReader) Get(ctx context.Context, variantID int64) (inventory.Inventory, error) {
	inv, err := r.store.StockGet(ctx, variantID)
	if err == nil && variantID == r.variantID {
		inv.Quantity = r.quantity
	}
	return inv, err
}

func TestCreateSaleSecondLineFailureRollsBack(t *testing.T) {
	// The pre-check sees a stale quantity for variant 2, so it passes; the
	// FOR UPDATE re-check inside the transaction sees the real quantity,
	// fails the second line, and the whole sale rolls back including the
	// first line's debit.
	store := newFakeStore(map[int64]int{1: 10, 2: 1})
	svc := NewService(store, staleReader{store: store, variantID: 2, quantity: 5}, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateSaleRequest{
		PaymentMethod: PaymentMethodTransfer,
		Items: []CreateSaleItemRequest{
			{VariantID: 1, Quantity: 4, UnitPrice: dec("10.00")},
			{VariantID: 2, Quantity: 3, UnitPrice: dec("5.00")},
		},
	})
	var insufficient *shared.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	require.Empty(t, store.sales)
	require.Empty(t, store.items)
	require.Empty(t, store.ledger)
	require.Equal(t, 10, store.stock[1].Quantity)
	require.Equal(t, 1, store.stock[2].Quantity)
}

func TestCreateSaleMissingVariant(t *testing.T) {
	svc, _ := newTestService(map[int64]int{1: 10})

	_, err := svc.Create(context.Background(), CreateSaleRequest{
		PaymentMethod: PaymentMethodCash,
		Items:         []CreateSaleItemRequest{{VariantID: 99, Quantity: 1, UnitPrice: dec("10.00")}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateSaleRejectsEmptyItems(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Create(context.Background(), CreateSaleRequest{
		PaymentMethod: PaymentMethodCash,
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateSaleRejectsBadDiscount(t *testing.T) {
	svc, _ := newTestService(map[int64]int{1: 10})

	_, err := svc.Create(context.Background(), CreateSaleRequest{
		PaymentMethod: PaymentMethodCash,
		Items: []CreateSaleItemRequest{
			{VariantID: 1, Quantity: 1, UnitPrice: dec("10.00"), DiscountPercent: dec("101")},
		},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCancelRestoresStock(t *testing.T) {
	svc, store := newTestService(map[int64]int{1: 10})
	ctx := context.Background()

	saleID, err := svc.Create(ctx, CreateSaleRequest{
		PaymentMethod: PaymentMethodCash,
		Items:         []CreateSaleItemRequest{{VariantID: 1, Quantity: 6, UnitPrice: dec("15.00")}},
	})
	require.NoError(t, err)
	require.Equal(t, 4, store.stock[1].Quantity)

	require.NoError(t, svc.Cancel(ctx, saleID))

	// Stock restored, sale gone, ledger keeps both movements.
	require.Equal(t, 10, store.stock[1].Quantity)
	_, err = svc.Get(ctx, saleID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.Len(t, store.ledger, 2)
	require.Equal(t, inventory.TransactionTypeSale, store.ledger[0].Type)
	require.Equal(t, inventory.TransactionTypeReturn, store.ledger[1].Type)
	require.Equal(t, 0, store.ledger[0].QuantityChange+store.ledger[1].QuantityChange)
}

func TestCancelUnknownSale(t *testing.T) {
	svc, _ := newTestService(nil)

	err := svc.Cancel(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLineSubtotalRounding(t *testing.T) {
	// 3 * 19.99 at 15% off = 50.9745, rounds to 50.97.
	got := lineSubtotal(3, dec("19.99"), dec("15"))
	require.True(t, got.Equal(dec("50.97")), "got %s", got)
}
