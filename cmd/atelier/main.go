package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/atelier-retail/atelier/internal/app"
	"github.com/atelier-retail/atelier/internal/inventory"
	"github.com/atelier-retail/atelier/internal/platform/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	cliApp := &cli.App{
		Name:  "atelier",
		Usage: "clothing retailer back office",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply pending schema migrations",
				Action: func(c *cli.Context) error {
					if err := db.Migrate(cfg.PGDSN); err != nil {
						return err
					}
					logger.Info("migrations applied")
					return nil
				},
			},
			{
				Name:  "seed-demo",
				Usage: "load a small demo dataset (categories, products, customers, suppliers, sales)",
				Action: func(c *cli.Context) error {
					pool, err := db.New(c.Context, cfg.PGDSN)
					if err != nil {
						return err
					}
					defer pool.Close()
					return seedDemo(c.Context, pool, logger)
				},
			},
			{
				Name:  "low-stock",
				Usage: "list variants at or below the low-stock threshold",
				Action: func(c *cli.Context) error {
					pool, err := db.New(c.Context, cfg.PGDSN)
					if err != nil {
						return err
					}
					defer pool.Close()

					svc := inventory.NewService(inventory.NewRepository(pool), nil)
					items, err := svc.LowStock(c.Context, cfg.LowStockThreshold)
					if err != nil {
						return err
					}
					for _, it := range items {
						fmt.Printf("%s %s/%s: %d\n", it.ProductName, it.Size, it.Color, it.Quantity)
					}
					return nil
				},
			},
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
