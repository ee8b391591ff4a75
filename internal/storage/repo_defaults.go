package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/preciario/internal/pricing"
)

// PricingDefaults is the singleton row holding the percentages new sheets are
// seeded with and the currency quotes are issued in.
type PricingDefaults struct {
	Defaults pricing.Defaults
	Currency string
}

type DefaultsRepo struct {
	db *sql.DB
}

func NewDefaultsRepo(db *sql.DB) *DefaultsRepo {
	return &DefaultsRepo{db: db}
}

// Ensure inserts the singleton if it does not exist yet and reports whether it
// did.
func (r *DefaultsRepo) Ensure(ctx context.Context, d PricingDefaults) (bool, error) {
	return ensureDefaults(ctx, r.db, d)
}

func (r *DefaultsRepo) Get(ctx context.Context) (PricingDefaults, error) {
	var d PricingDefaults
	err := r.db.QueryRowContext(ctx, `
		SELECT profit_percent, invoice_percent, commission_percent, currency
		FROM pricing_defaults
		WHERE id = 1
	`).Scan(
		&d.Defaults.ProfitPercent,
		&d.Defaults.InvoicePercent,
		&d.Defaults.CommissionPercent,
		&d.Currency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PricingDefaults{}, fmt.Errorf("pricing_defaults singleton not found")
		}
		return PricingDefaults{}, fmt.Errorf("query pricing_defaults: %w", err)
	}
	return d, nil
}

func (r *DefaultsRepo) Update(ctx context.Context, d PricingDefaults) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE pricing_defaults
		SET
			profit_percent = ?,
			invoice_percent = ?,
			commission_percent = ?,
			currency = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		d.Defaults.ProfitPercent,
		d.Defaults.InvoicePercent,
		d.Defaults.CommissionPercent,
		d.Currency,
	)
	if err != nil {
		return fmt.Errorf("update pricing_defaults: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func ensureDefaults(ctx context.Context, exec execer, d PricingDefaults) (bool, error) {
	res, err := exec.ExecContext(ctx, `
		INSERT INTO pricing_defaults (id, profit_percent, invoice_percent, commission_percent, currency)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		d.Defaults.ProfitPercent,
		d.Defaults.InvoicePercent,
		d.Defaults.CommissionPercent,
		d.Currency,
	)
	if err != nil {
		return false, fmt.Errorf("insert default pricing_defaults: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert default pricing_defaults: %w", err)
	}
	return n > 0, nil
}

// EnsureDefaultsTx is Ensure inside a caller-owned transaction.
func EnsureDefaultsTx(ctx context.Context, tx *sql.Tx, d PricingDefaults) (bool, error) {
	return ensureDefaults(ctx, tx, d)
}
