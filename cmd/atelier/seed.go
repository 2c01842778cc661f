package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atelier-retail/atelier/internal/inventory"
	"github.com/atelier-retail/atelier/internal/masterdata/categories"
	"github.com/atelier-retail/atelier/internal/masterdata/products"
	"github.com/atelier-retail/atelier/internal/masterdata/suppliers"
	"github.com/atelier-retail/atelier/internal/sales"
	"github.com/atelier-retail/atelier/internal/sales/customers"
	"github.com/atelier-retail/atelier/internal/shared"
)

type demoProduct struct {
	code     string
	name     string
	desc     string
	category string
	price    string
	sizes    []string
	colors   []string
}

var demoProducts = []demoProduct{
	{"TSH001", "Basic Tee", "Cotton t-shirt", "T-Shirts", "199.99", []string{"S", "M", "L", "XL"}, []string{"Black", "White", "Blue"}},
	{"TSH002", "Polo Shirt", "Classic polo", "T-Shirts", "299.99", []string{"S", "M", "L", "XL"}, []string{"Black", "White", "Blue"}},
	{"PNT001", "Classic Jeans", "Straight cut jeans", "Pants", "599.99", []string{"28", "30", "32", "34", "36"}, []string{"Blue", "Black", "Khaki"}},
	{"DRS001", "Day Dress", "Casual day dress", "Dresses", "799.99", []string{"2", "4", "6", "8", "10"}, []string{"Black", "Red", "Blue"}},
	{"ACC001", "Leather Belt", "Genuine leather belt", "Accessories", "299.99", []string{"28", "30", "32", "34"}, []string{"Black", "Brown"}},
	{"JCK001", "Winter Jacket", "Padded winter jacket", "Jackets", "1299.99", []string{"S", "M", "L"}, []string{"Black", "Navy"}},
}

var demoCustomers = []customers.CreateCustomerRequest{
	{Name: "Juan Perez", Email: ptrStr("juan@example.com"), Phone: ptrStr("5551234567"), Address: ptrStr("Calle 1 #123")},
	{Name: "Maria Garcia", Email: ptrStr("maria@example.com"), Phone: ptrStr("5552345678"), Address: ptrStr("Av. Principal #456")},
	{Name: "Carlos Lopez", Email: ptrStr("carlos@example.com"), Phone: ptrStr("5553456789"), Address: ptrStr("Plaza Central #789")},
}

var demoSuppliers = []suppliers.CreateSupplierRequest{
	{Name: "Textiles del Norte", ContactPerson: ptrStr("Luis Ramos"), Email: ptrStr("ventas@textilesnorte.example"), Phone: "5559001001"},
	{Name: "Moda Express", ContactPerson: ptrStr("Sofia Vidal"), Email: ptrStr("contacto@modaexpress.example"), Phone: "5559002002"},
}

// seedDemo loads a small but complete dataset: catalog with variants at 10
// units each, customers, suppliers with product links, and two sales booked
// through the sales engine so the ledger has real movements. Skipped when
// products already exist.
func seedDemo(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	audit := shared.NewAuditLogger(pool)

	categorySvc := categories.NewService(categories.NewRepository(pool))
	invRepo := inventory.NewRepository(pool)
	productSvc := products.NewService(products.NewRepository(pool), audit)
	supplierSvc := suppliers.NewService(suppliers.NewRepository(pool), audit)
	customerSvc := customers.NewService(customers.NewRepository(pool), audit)
	saleSvc := sales.NewService(sales.NewRepository(pool), invRepo, audit)

	cats, err := categorySvc.List(ctx)
	if err != nil {
		return fmt.Errorf("seed: list categories: %w", err)
	}
	categoryID := make(map[string]int64, len(cats))
	for _, c := range cats {
		categoryID[c.Name] = c.ID
	}

	var created []products.Product
	for _, dp := range demoProducts {
		catID, ok := categoryID[dp.category]
		if !ok {
			return fmt.Errorf("seed: category %q missing, run migrate first", dp.category)
		}
		price, err := decimal.NewFromString(dp.price)
		if err != nil {
			return fmt.Errorf("seed: price for %s: %w", dp.code, err)
		}

		req := products.CreateProductRequest{
			Code:        dp.code,
			Name:        dp.name,
			Description: ptrStr(dp.desc),
			CategoryID:  catID,
			Price:       price,
		}
		for _, size := range dp.sizes {
			for _, color := range dp.colors {
				req.Variants = append(req.Variants, products.CreateVariantRequest{
					Size: size, Color: color, InitialQuantity: 10,
				})
			}
		}

		p, err := productSvc.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("seed: create product %s: %w", dp.code, err)
		}
		created = append(created, p)
	}
	logger.Info("seeded products", "count", len(created))

	var customerIDs []int64
	for _, req := range demoCustomers {
		c, err := customerSvc.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("seed: create customer %s: %w", req.Name, err)
		}
		customerIDs = append(customerIDs, c.ID)
	}

	for i, req := range demoSuppliers {
		s, err := supplierSvc.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("seed: create supplier %s: %w", req.Name, err)
		}
		// Alternate product links between the two suppliers.
		for j, p := range created {
			if j%len(demoSuppliers) == i {
				if err := supplierSvc.AddProduct(ctx, s.ID, p.ID); err != nil {
					return fmt.Errorf("seed: link supplier %s: %w", req.Name, err)
				}
			}
		}
	}

	demoSales := []sales.CreateSaleRequest{
		{
			CustomerID:    &customerIDs[0],
			PaymentMethod: sales.PaymentMethodCash,
			Items: []sales.CreateSaleItemRequest{
				{VariantID: created[0].Variants[0].ID, Quantity: 2, UnitPrice: created[0].Price},
				{VariantID: created[2].Variants[0].ID, Quantity: 1, UnitPrice: created[2].Price},
			},
		},
		{
			CustomerID:    &customerIDs[1],
			PaymentMethod: sales.PaymentMethodCreditCard,
			Items: []sales.CreateSaleItemRequest{
				{VariantID: created[3].Variants[1].ID, Quantity: 1, UnitPrice: created[3].Price, DiscountPercent: decimal.NewFromInt(10)},
			},
		},
	}
	for i, req := range demoSales {
		id, err := saleSvc.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("seed: create sale %d: %w", i+1, err)
		}
		logger.Info("seeded sale", "sale_id", id)
	}

	logger.Info("demo data loaded")
	return nil
}

func ptrStr(s string) *string { return &s }
