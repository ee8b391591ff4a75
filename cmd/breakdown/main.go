package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/Simplici0/preciario/internal/config"
	"github.com/Simplici0/preciario/internal/db"
	"github.com/Simplici0/preciario/internal/pricing"
	"github.com/Simplici0/preciario/internal/storage"
	"github.com/Simplici0/preciario/internal/tui"
)

type options struct {
	cost      float64
	productID int64
	title     string
	save      bool
}

func main() {
	var opts options
	flag.Float64Var(&opts.cost, "cost", 0, "cost to break down")
	flag.Int64Var(&opts.productID, "product", 0, "read cost and defaults for this product id from the database")
	flag.StringVar(&opts.title, "title", "", "quote title")
	flag.BoolVar(&opts.save, "save", false, "store the calculation as a quote")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "breakdown: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("an interactive terminal is required")
	}
	if opts.cost < 0 {
		return errors.New("cost must be zero or positive")
	}

	cfg := config.Load()
	title := opts.title
	product := storage.Product{Name: "Costo manual", Cost: pricing.Round2(opts.cost)}
	defaults := storage.PricingDefaults{Defaults: cfg.Defaults, Currency: cfg.Currency}

	var database *sql.DB
	if opts.productID > 0 || opts.save {
		var err error
		database, err = db.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.Close()

		if defaults, err = storage.NewDefaultsRepo(database).Get(ctx); err != nil {
			return err
		}
	}

	if opts.productID > 0 {
		p, ok, err := storage.NewProductRepo(database).Get(ctx, opts.productID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("product %d: %w", opts.productID, storage.ErrProductNotFound)
		}
		product = p
	}
	if title == "" {
		title = product.Name
	}

	calc, err := tui.Run(title, product.Cost, defaults.Defaults, defaults.Currency)
	if err != nil {
		return err
	}
	if calc == nil {
		return nil
	}

	printCalculation(*calc, defaults.Currency)

	if !opts.save {
		return nil
	}
	id, err := storage.NewQuoteRepo(database).Create(ctx, storage.NewQuote{
		ProductID:   product.ID,
		Title:       title,
		Currency:    defaults.Currency,
		Calculation: *calc,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Cotización #%d guardada.\n", id)
	return nil
}

func printCalculation(calc pricing.Calculation, currency string) {
	for _, row := range calc.Rows {
		fmt.Printf("%-24s %12s %s\n", row.Label, pricing.FormatFixed2(row.Value.Float()), currency)
	}
	fmt.Printf("%-24s %12s %s\n", "Total", pricing.FormatFixed2(calc.Total), currency)
}
