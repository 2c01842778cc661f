package suppliers

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-retail/atelier/internal/shared"
)

type Repository interface {
	List(ctx context.Context) ([]Supplier, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Search(ctx context.Context, term string) ([]Supplier, error)
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	Update(ctx context.Context, id int64, supplier Supplier) error
	Delete(ctx context.Context, id int64) error
	AddProduct(ctx context.Context, supplierID, productID int64) error
	RemoveProduct(ctx context.Context, supplierID, productID int64) error
	ProductsOf(ctx context.Context, supplierID int64) ([]SuppliedProduct, error)
	SuppliersFor(ctx context.Context, productID int64) ([]Supplier, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const supplierColumns = `id, name, contact_person, email, phone, address, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuppliers(rows)
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.db.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, shared.ErrNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

func (r *repository) Search(ctx context.Context, term string) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+supplierColumns+` FROM suppliers
		WHERE name ILIKE $1 OR COALESCE(contact_person, '') ILIKE $1
		ORDER BY name`, "%"+term+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuppliers(rows)
}

func (r *repository) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO suppliers (name, contact_person, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address,
		supplier.CreatedAt, supplier.UpdatedAt).Scan(&supplier.ID)
	if err != nil {
		return Supplier{}, err
	}
	return supplier, nil
}

func (r *repository) Update(ctx context.Context, id int64, supplier Supplier) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE suppliers
		SET name = $1, contact_person = $2, email = $3, phone = $4, address = $5, updated_at = $6
		WHERE id = $7`,
		supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) AddProduct(ctx context.Context, supplierID, productID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO supplier_products (supplier_id, product_id) VALUES ($1, $2)`,
		supplierID, productID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return shared.ErrDuplicate
			case "23503":
				return shared.ErrNotFound
			}
		}
		return err
	}
	return nil
}

func (r *repository) RemoveProduct(ctx context.Context, supplierID, productID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM supplier_products WHERE supplier_id = $1 AND product_id = $2`,
		supplierID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ProductsOf(ctx context.Context, supplierID int64) ([]SuppliedProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.code, p.name
		FROM supplier_products sp
		JOIN products p ON sp.product_id = p.id
		WHERE sp.supplier_id = $1
		ORDER BY p.name`, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []SuppliedProduct
	for rows.Next() {
		var p SuppliedProduct
		if err := rows.Scan(&p.ProductID, &p.ProductCode, &p.ProductName); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) SuppliersFor(ctx context.Context, productID int64) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.name, s.contact_person, s.email, s.phone, s.address, s.created_at, s.updated_at
		FROM supplier_products sp
		JOIN suppliers s ON sp.supplier_id = s.id
		WHERE sp.product_id = $1
		ORDER BY s.name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuppliers(rows)
}

func scanSuppliers(rows pgx.Rows) ([]Supplier, error) {
	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		err := rows.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address,
			&s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}
