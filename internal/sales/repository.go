package sales

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-retail/atelier/internal/inventory"
	"github.com/atelier-retail/atelier/internal/platform/db"
	"github.com/atelier-retail/atelier/internal/shared"
)

// Repository abstracts sale persistence for the service.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, filter ListFilter) ([]Sale, error)
	TotalsByPaymentMethod(ctx context.Context, from, to time.Time) ([]PaymentMethodTotal, error)
	TopSellingProducts(ctx context.Context, filter TopProductsFilter) ([]ProductSales, error)
}

// TxRepository exposes the writes available inside a sale transaction.
// Ledger gives access to inventory mutations bound to the same transaction,
// so stock debits and credits share the sale's commit/rollback fate.
type TxRepository interface {
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertItem(ctx context.Context, item SaleItem) (int64, error)
	DeleteItems(ctx context.Context, saleID int64) error
	DeleteSale(ctx context.Context, saleID int64) error
	Ledger() inventory.TxRepository
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed sales repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

type txRepo struct {
	db db.DBTX
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{db: tx})
	})
}

func (r *repository) Get(ctx context.Context, id int64) (*Sale, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT s.id, s.receipt_code, s.customer_id, s.sale_date, s.payment_method, s.total_amount, c.name
		FROM sales s
		LEFT JOIN customers c ON s.customer_id = c.id
		WHERE s.id = $1`, id)

	var s Sale
	var method string
	if err := row.Scan(&s.ID, &s.ReceiptCode, &s.CustomerID, &s.SaleDate, &method, &s.TotalAmount, &s.CustomerName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	s.PaymentMethod = PaymentMethod(method)

	rows, err := r.pool.Query(ctx, `
		SELECT si.id, si.sale_id, si.product_variant_id, si.quantity, si.unit_price,
		       si.discount_percent, si.subtotal, p.name, p.code, pv.size, pv.color
		FROM sale_items si
		JOIN product_variants pv ON si.product_variant_id = pv.id
		JOIN products p ON pv.product_id = p.id
		WHERE si.sale_id = $1
		ORDER BY si.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it SaleItem
		err := rows.Scan(&it.ID, &it.SaleID, &it.ProductVariantID, &it.Quantity, &it.UnitPrice,
			&it.DiscountPercent, &it.Subtotal, &it.ProductName, &it.ProductCode, &it.Size, &it.Color)
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	query := `
		SELECT s.id, s.receipt_code, s.customer_id, s.sale_date, s.payment_method, s.total_amount, c.name
		FROM sales s
		LEFT JOIN customers c ON s.customer_id = c.id
		WHERE 1=1`
	args := []any{}
	argCount := 0

	if !filter.From.IsZero() {
		argCount++
		query += ` AND s.sale_date >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		query += ` AND s.sale_date <= $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	argCount++
	query += ` ORDER BY s.sale_date DESC LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var s Sale
		var method string
		if err := rows.Scan(&s.ID, &s.ReceiptCode, &s.CustomerID, &s.SaleDate, &method, &s.TotalAmount, &s.CustomerName); err != nil {
			return nil, err
		}
		s.PaymentMethod = PaymentMethod(method)
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *repository) TotalsByPaymentMethod(ctx context.Context, from, to time.Time) ([]PaymentMethodTotal, error) {
	query := `
		SELECT payment_method, COUNT(*), SUM(total_amount)
		FROM sales
		WHERE 1=1`
	args := []any{}
	argCount := 0

	if !from.IsZero() {
		argCount++
		query += ` AND sale_date >= $` + strconv.Itoa(argCount)
		args = append(args, from)
	}
	if !to.IsZero() {
		argCount++
		query += ` AND sale_date <= $` + strconv.Itoa(argCount)
		args = append(args, to)
	}
	query += ` GROUP BY payment_method ORDER BY SUM(total_amount) DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []PaymentMethodTotal
	for rows.Next() {
		var t PaymentMethodTotal
		var method string
		if err := rows.Scan(&method, &t.Count, &t.Total); err != nil {
			return nil, err
		}
		t.PaymentMethod = PaymentMethod(method)
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *repository) TopSellingProducts(ctx context.Context, filter TopProductsFilter) ([]ProductSales, error) {
	query := `
		SELECT p.id, p.code, p.name, c.name,
		       SUM(si.quantity), SUM(si.subtotal), COUNT(DISTINCT s.id)
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		JOIN product_variants pv ON si.product_variant_id = pv.id
		JOIN products p ON pv.product_id = p.id
		JOIN categories c ON p.category_id = c.id
		WHERE 1=1`
	args := []any{}
	argCount := 0

	if !filter.From.IsZero() {
		argCount++
		query += ` AND s.sale_date >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		query += ` AND s.sale_date <= $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	argCount++
	query += ` GROUP BY p.id, p.code, p.name, c.name ORDER BY SUM(si.quantity) DESC LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProductSales
	for rows.Next() {
		var ps ProductSales
		err := rows.Scan(&ps.ProductID, &ps.ProductCode, &ps.ProductName, &ps.Category,
			&ps.TotalQuantity, &ps.TotalAmount, &ps.SaleCount)
		if err != nil {
			return nil, err
		}
		result = append(result, ps)
	}
	return result, rows.Err()
}

func (r *txRepo) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sales (receipt_code, customer_id, sale_date, payment_method, total_amount)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		sale.ReceiptCode, sale.CustomerID, sale.SaleDate, string(sale.PaymentMethod), sale.TotalAmount,
	).Scan(&id)
	return id, err
}

func (r *txRepo) InsertItem(ctx context.Context, item SaleItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sale_items (sale_id, product_variant_id, quantity, unit_price, discount_percent, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		item.SaleID, item.ProductVariantID, item.Quantity, item.UnitPrice, item.DiscountPercent, item.Subtotal,
	).Scan(&id)
	return id, err
}

func (r *txRepo) DeleteItems(ctx context.Context, saleID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID)
	return err
}

func (r *txRepo) DeleteSale(ctx context.Context, saleID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *txRepo) Ledger() inventory.TxRepository {
	return inventory.NewTxRepository(r.db)
}
