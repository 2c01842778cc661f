package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-retail/atelier/internal/platform/db"
	"github.com/atelier-retail/atelier/internal/shared"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations the ledger funnel needs.
// Other components (the sales engine, the catalog store) obtain one bound to
// their own transaction via NewTxRepository so every stock write shares the
// caller's commit/rollback fate.
type TxRepository interface {
	GetForUpdate(ctx context.Context, variantID int64) (Inventory, error)
	InsertRow(ctx context.Context, variantID int64, at time.Time) error
	UpdateQuantity(ctx context.Context, variantID int64, quantity int, at time.Time) error
	InsertTransaction(ctx context.Context, tx Transaction) (int64, error)
}

type txRepo struct {
	db db.DBTX
}

// NewTxRepository binds ledger writes to an existing executor, typically a
// pgx.Tx owned by another component's compound workflow.
func NewTxRepository(q db.DBTX) TxRepository {
	return &txRepo{db: q}
}

// WithTx executes the callback inside a transaction bound to this repository.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{db: tx})
	})
}

// Get returns the inventory row for a variant.
func (r *Repository) Get(ctx context.Context, variantID int64) (Inventory, error) {
	return scanInventory(r.pool.QueryRow(ctx,
		`SELECT id, product_variant_id, quantity, last_updated FROM inventory WHERE product_variant_id = $1`,
		variantID))
}

// LowStock lists variants with 0 < quantity <= threshold.
func (r *Repository) LowStock(ctx context.Context, threshold int) ([]StockItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.code, p.name, pv.id, pv.size, pv.color, i.quantity
		FROM inventory i
		JOIN product_variants pv ON i.product_variant_id = pv.id
		JOIN products p ON pv.product_id = p.id
		WHERE i.quantity > 0 AND i.quantity <= $1
		ORDER BY i.quantity, p.name`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStockItems(rows)
}

// OutOfStock lists variants with zero quantity.
func (r *Repository) OutOfStock(ctx context.Context) ([]StockItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.code, p.name, pv.id, pv.size, pv.color, i.quantity
		FROM inventory i
		JOIN product_variants pv ON i.product_variant_id = pv.id
		JOIN products p ON pv.product_id = p.id
		WHERE i.quantity = 0
		ORDER BY p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStockItems(rows)
}

// StockByCategory aggregates product and unit counts per category.
func (r *Repository) StockByCategory(ctx context.Context) ([]CategoryStock, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.name, COUNT(DISTINCT p.id), COALESCE(SUM(i.quantity), 0)
		FROM categories c
		JOIN products p ON c.id = p.category_id
		JOIN product_variants pv ON p.id = pv.product_id
		JOIN inventory i ON pv.id = i.product_variant_id
		GROUP BY c.id
		ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryStock
	for rows.Next() {
		var cs CategoryStock
		if err := rows.Scan(&cs.Category, &cs.Products, &cs.Units); err != nil {
			return nil, err
		}
		result = append(result, cs)
	}
	return result, rows.Err()
}

// Transactions lists ledger history with optional filters, newest first.
func (r *Repository) Transactions(ctx context.Context, filter TransactionFilter) ([]TransactionEntry, error) {
	query := `
		SELECT it.id, it.product_variant_id, it.quantity_change, it.transaction_type,
		       it.reference_id, it.transaction_date, it.notes, p.name, pv.size, pv.color
		FROM inventory_transactions it
		JOIN product_variants pv ON it.product_variant_id = pv.id
		JOIN products p ON pv.product_id = p.id
		WHERE 1=1`
	args := []any{}
	argCount := 0

	if filter.VariantID != nil {
		argCount++
		query += ` AND it.product_variant_id = $` + strconv.Itoa(argCount)
		args = append(args, *filter.VariantID)
	}
	if filter.Type != nil {
		argCount++
		query += ` AND it.transaction_type = $` + strconv.Itoa(argCount)
		args = append(args, string(*filter.Type))
	}
	if !filter.From.IsZero() {
		argCount++
		query += ` AND it.transaction_date >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		query += ` AND it.transaction_date <= $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	argCount++
	query += ` ORDER BY it.transaction_date DESC LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TransactionEntry
	for rows.Next() {
		var e TransactionEntry
		var txType string
		err := rows.Scan(&e.ID, &e.ProductVariantID, &e.QuantityChange, &txType,
			&e.ReferenceID, &e.TransactionDate, &e.Notes, &e.ProductName, &e.Size, &e.Color)
		if err != nil {
			return nil, err
		}
		e.Type = TransactionType(txType)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *txRepo) GetForUpdate(ctx context.Context, variantID int64) (Inventory, error) {
	return scanInventory(r.db.QueryRow(ctx,
		`SELECT id, product_variant_id, quantity, last_updated FROM inventory WHERE product_variant_id = $1 FOR UPDATE`,
		variantID))
}

func (r *txRepo) InsertRow(ctx context.Context, variantID int64, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO inventory (product_variant_id, quantity, last_updated) VALUES ($1, 0, $2)`,
		variantID, at)
	if err != nil {
		return fmt.Errorf("insert inventory row: %w", err)
	}
	return nil
}

func (r *txRepo) UpdateQuantity(ctx context.Context, variantID int64, quantity int, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE inventory SET quantity = $1, last_updated = $2 WHERE product_variant_id = $3`,
		quantity, at, variantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *txRepo) InsertTransaction(ctx context.Context, tx Transaction) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO inventory_transactions
		(product_variant_id, quantity_change, transaction_type, reference_id, transaction_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		tx.ProductVariantID, tx.QuantityChange, string(tx.Type), tx.ReferenceID, tx.TransactionDate, tx.Notes,
	).Scan(&id)
	return id, err
}

func scanInventory(row pgx.Row) (Inventory, error) {
	var inv Inventory
	err := row.Scan(&inv.ID, &inv.ProductVariantID, &inv.Quantity, &inv.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Inventory{}, shared.ErrNotFound
		}
		return Inventory{}, err
	}
	return inv, nil
}

func scanStockItems(rows pgx.Rows) ([]StockItem, error) {
	var items []StockItem
	for rows.Next() {
		var it StockItem
		err := rows.Scan(&it.ProductID, &it.ProductCode, &it.ProductName, &it.VariantID, &it.Size, &it.Color, &it.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
