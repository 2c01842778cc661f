package analytics

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the read-only reporting joins. Nothing here ever writes.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func (r *Repository) SalesByPeriod(ctx context.Context, granularity string, filter RangeFilter) ([]PeriodRevenue, error) {
	var format string
	switch granularity {
	case PeriodDay:
		format = "YYYY-MM-DD"
	case PeriodMonth:
		format = "YYYY-MM"
	default:
		format = "YYYY"
	}

	query := `
		SELECT to_char(sale_date, '` + format + `') AS period, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM sales WHERE 1=1`
	query, args := appendRange(query, nil, "sale_date", filter)
	query += ` GROUP BY period ORDER BY period`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PeriodRevenue
	for rows.Next() {
		var p PeriodRevenue
		if err := rows.Scan(&p.Period, &p.SaleCount, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) SalesByCategory(ctx context.Context, filter RangeFilter) ([]CategoryRevenue, error) {
	query := `
		SELECT c.id, c.name, COALESCE(SUM(si.quantity), 0), COALESCE(SUM(si.subtotal), 0)
		FROM sale_items si
		JOIN sales s ON si.sale_id = s.id
		JOIN product_variants pv ON si.product_variant_id = pv.id
		JOIN products p ON pv.product_id = p.id
		JOIN categories c ON p.category_id = c.id
		WHERE 1=1`
	query, args := appendRange(query, nil, "s.sale_date", filter)
	query += ` GROUP BY c.id, c.name ORDER BY 4 DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryRevenue
	for rows.Next() {
		var c CategoryRevenue
		if err := rows.Scan(&c.CategoryID, &c.CategoryName, &c.UnitsSold, &c.Revenue); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) InventoryValue(ctx context.Context) (InventoryValuation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, COALESCE(SUM(i.quantity), 0), COALESCE(SUM(i.quantity * p.price), 0)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		LEFT JOIN product_variants pv ON pv.product_id = p.id
		LEFT JOIN inventory i ON i.product_variant_id = pv.id
		GROUP BY c.id, c.name
		ORDER BY 4 DESC`)
	if err != nil {
		return InventoryValuation{}, err
	}
	defer rows.Close()

	valuation := InventoryValuation{GeneratedAt: time.Now().UTC()}
	for rows.Next() {
		var cv CategoryValue
		if err := rows.Scan(&cv.CategoryID, &cv.CategoryName, &cv.Units, &cv.Value); err != nil {
			return InventoryValuation{}, err
		}
		valuation.ByCategory = append(valuation.ByCategory, cv)
		valuation.TotalUnits += cv.Units
		valuation.TotalValue = valuation.TotalValue.Add(cv.Value)
	}
	return valuation, rows.Err()
}

func (r *Repository) TopCustomers(ctx context.Context, limit int, filter RangeFilter) ([]CustomerSpend, error) {
	query := `
		SELECT c.id, c.name, COUNT(s.id), COALESCE(SUM(s.total_amount), 0)
		FROM sales s
		JOIN customers c ON s.customer_id = c.id
		WHERE 1=1`
	query, args := appendRange(query, nil, "s.sale_date", filter)
	query += ` GROUP BY c.id, c.name ORDER BY 4 DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerSpend
	for rows.Next() {
		var cs CustomerSpend
		if err := rows.Scan(&cs.CustomerID, &cs.CustomerName, &cs.SaleCount, &cs.TotalSpent); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func appendRange(query string, args []any, column string, filter RangeFilter) (string, []any) {
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += ` AND ` + column + ` >= $` + strconv.Itoa(len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += ` AND ` + column + ` <= $` + strconv.Itoa(len(args))
	}
	return query, args
}
