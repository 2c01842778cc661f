package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-retail/atelier/internal/inventory"
	"github.com/atelier-retail/atelier/internal/masterdata/shared"
	"github.com/atelier-retail/atelier/internal/platform/db"
	sharederrs "github.com/atelier-retail/atelier/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetByCode(ctx context.Context, code string) (Product, error)
	Search(ctx context.Context, term string) ([]Product, error)
	OnSale(ctx context.Context, now time.Time) ([]Product, error)
	Update(ctx context.Context, id int64, product Product) error
	VariantsOf(ctx context.Context, productID int64) ([]Variant, error)
	GetVariant(ctx context.Context, variantID int64) (Variant, error)
	FindVariant(ctx context.Context, productID int64, size, color string) (*Variant, error)
	UpdateVariant(ctx context.Context, id int64, size, color string) error
	CountSaleItemsForProduct(ctx context.Context, productID int64) (int, error)
	CountSaleItemsForVariant(ctx context.Context, variantID int64) (int, error)
}

// TxRepository exposes catalog writes inside one transaction. Ledger binds
// inventory-row creation and initial-stock adjustments to the same
// transaction as the product/variant inserts.
type TxRepository interface {
	InsertProduct(ctx context.Context, product Product) (int64, error)
	InsertVariant(ctx context.Context, variant Variant) (int64, error)
	DeleteProduct(ctx context.Context, id int64) error
	DeleteVariant(ctx context.Context, id int64) error
	DeleteInventoryRow(ctx context.Context, variantID int64) error
	Ledger() inventory.TxRepository
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

type txRepo struct {
	db db.DBTX
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{db: tx})
	})
}

const productColumns = `id, code, name, description, category_id, price, discount_percent,
	discount_start_date, discount_end_date, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM products WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.CategoryID != nil {
		argCount++
		cond := ` AND category_id = $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, *filters.CategoryID)
	}
	if filters.Search != "" {
		argCount++
		cond := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += cond
		countQuery += cond
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return Product{}, err
	}
	p.Variants, err = r.VariantsOf(ctx, p.ID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code)
}

func (r *repository) getOne(ctx context.Context, query string, arg any) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.CategoryID, &p.Price, &p.DiscountPercent,
		&p.DiscountStartDate, &p.DiscountEndDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, sharederrs.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Search(ctx context.Context, term string) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE name ILIKE $1 OR description ILIKE $1 OR code ILIKE $1
		ORDER BY name`, "%"+term+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *repository) OnSale(ctx context.Context, now time.Time) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE discount_percent > 0
		AND (discount_start_date IS NULL OR discount_start_date <= $1)
		AND (discount_end_date IS NULL OR discount_end_date >= $1)
		ORDER BY name`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET code = $1, name = $2, description = $3, category_id = $4, price = $5,
		    discount_percent = $6, discount_start_date = $7, discount_end_date = $8, updated_at = $9
		WHERE id = $10`,
		product.Code, product.Name, product.Description, product.CategoryID, product.Price,
		product.DiscountPercent, product.DiscountStartDate, product.DiscountEndDate, time.Now().UTC(), id)
	if err != nil {
		return mapDuplicate(err)
	}
	if tag.RowsAffected() == 0 {
		return sharederrs.ErrNotFound
	}
	return nil
}

func (r *repository) VariantsOf(ctx context.Context, productID int64) ([]Variant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT pv.id, pv.product_id, pv.size, pv.color, COALESCE(i.quantity, 0)
		FROM product_variants pv
		LEFT JOIN inventory i ON pv.id = i.product_variant_id
		WHERE pv.product_id = $1
		ORDER BY pv.size, pv.color`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Quantity); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (r *repository) GetVariant(ctx context.Context, variantID int64) (Variant, error) {
	var v Variant
	err := r.db.QueryRow(ctx, `
		SELECT pv.id, pv.product_id, pv.size, pv.color, COALESCE(i.quantity, 0)
		FROM product_variants pv
		LEFT JOIN inventory i ON pv.id = i.product_variant_id
		WHERE pv.id = $1`, variantID).
		Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Variant{}, sharederrs.ErrNotFound
		}
		return Variant{}, err
	}
	return v, nil
}

func (r *repository) FindVariant(ctx context.Context, productID int64, size, color string) (*Variant, error) {
	var v Variant
	err := r.db.QueryRow(ctx, `
		SELECT id, product_id, size, color FROM product_variants
		WHERE product_id = $1 AND size = $2 AND color = $3`, productID, size, color).
		Scan(&v.ID, &v.ProductID, &v.Size, &v.Color)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) UpdateVariant(ctx context.Context, id int64, size, color string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE product_variants SET size = $1, color = $2 WHERE id = $3`, size, color, id)
	if err != nil {
		return mapDuplicate(err)
	}
	if tag.RowsAffected() == 0 {
		return sharederrs.ErrNotFound
	}
	return nil
}

func (r *repository) CountSaleItemsForProduct(ctx context.Context, productID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM sale_items si
		JOIN product_variants pv ON si.product_variant_id = pv.id
		WHERE pv.product_id = $1`, productID).Scan(&count)
	return count, err
}

func (r *repository) CountSaleItemsForVariant(ctx context.Context, variantID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM sale_items WHERE product_variant_id = $1`, variantID).Scan(&count)
	return count, err
}

func (r *txRepo) InsertProduct(ctx context.Context, product Product) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO products
		(code, name, description, category_id, price, discount_percent,
		 discount_start_date, discount_end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		product.Code, product.Name, product.Description, product.CategoryID, product.Price,
		product.DiscountPercent, product.DiscountStartDate, product.DiscountEndDate,
		product.CreatedAt, product.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, mapDuplicate(err)
	}
	return id, nil
}

func (r *txRepo) InsertVariant(ctx context.Context, variant Variant) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO product_variants (product_id, size, color) VALUES ($1, $2, $3) RETURNING id`,
		variant.ProductID, variant.Size, variant.Color).Scan(&id)
	if err != nil {
		return 0, mapDuplicate(err)
	}
	return id, nil
}

func (r *txRepo) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sharederrs.ErrNotFound
	}
	return nil
}

func (r *txRepo) DeleteVariant(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_variants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return sharederrs.ErrNotFound
	}
	return nil
}

func (r *txRepo) DeleteInventoryRow(ctx context.Context, variantID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM inventory WHERE product_variant_id = $1`, variantID)
	return err
}

func (r *txRepo) Ledger() inventory.TxRepository {
	return inventory.NewTxRepository(r.db)
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		var p Product
		err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.CategoryID, &p.Price,
			&p.DiscountPercent, &p.DiscountStartDate, &p.DiscountEndDate, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "price":
		return "price " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return sharederrs.ErrDuplicate
	}
	return err
}
