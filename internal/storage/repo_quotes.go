package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/preciario/internal/pricing"
)

var ErrQuoteNotFound = errors.New("quote not found")

// NewQuote is a confirmed breakdown ready to be stored.
type NewQuote struct {
	ProductID   int64
	Title       string
	Notes       string
	Currency    string
	Calculation pricing.Calculation
}

type QuoteSummary struct {
	ID        int64
	CreatedAt string
	Title     string
	Currency  string
	Total     decimal.Decimal
}

type QuoteRow struct {
	Position   int
	Label      string
	Role       string
	Percentage decimal.Decimal
	Value      decimal.Decimal
}

type QuoteDetail struct {
	QuoteSummary
	ProductID   int64
	ProductName string
	Notes       string
	Rows        []QuoteRow
}

type QuoteRepo struct {
	db *sql.DB
}

func NewQuoteRepo(db *sql.DB) *QuoteRepo {
	return &QuoteRepo{db: db}
}

// Create stores the quote and its itemised rows in one transaction. Amounts
// are kept as two-decimal text so they read back exactly.
func (r *QuoteRepo) Create(ctx context.Context, q NewQuote) (id int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin quote transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	productID := sql.NullInt64{Int64: q.ProductID, Valid: q.ProductID > 0}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO quotes (product_id, title, notes, currency, total)
		VALUES (?, ?, ?, ?, ?)
	`, productID, q.Title, q.Notes, q.Currency, money(q.Calculation.Total))
	if err != nil {
		return 0, fmt.Errorf("insert quote: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read quote id: %w", err)
	}

	for i, row := range q.Calculation.Rows {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO quote_rows (quote_id, position, label, role, percentage, value)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, i, row.Label, row.Role().String(), money(row.Percentage.Float()), money(row.Value.Float())); err != nil {
			return 0, fmt.Errorf("insert quote row %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit quote transaction: %w", err)
	}
	return id, nil
}

// List returns quotes newest first, optionally filtered by a substring of the
// title or the notes.
func (r *QuoteRepo) List(ctx context.Context, query string) ([]QuoteSummary, error) {
	search := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, COALESCE(title, ''), currency, total
		FROM quotes
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]QuoteSummary, 0)
	for rows.Next() {
		var q QuoteSummary
		var total string
		if err := rows.Scan(&q.ID, &q.CreatedAt, &q.Title, &q.Currency, &total); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		q.Total = parseMoney(total)
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

func (r *QuoteRepo) Get(ctx context.Context, id int64) (QuoteDetail, error) {
	var d QuoteDetail
	var productID sql.NullInt64
	var total string
	err := r.db.QueryRowContext(ctx, `
		SELECT q.id, q.created_at, COALESCE(q.title, ''), COALESCE(q.notes, ''), q.currency, q.total,
			q.product_id, COALESCE(p.name, '')
		FROM quotes q
		LEFT JOIN products p ON p.id = q.product_id
		WHERE q.id = ?
	`, id).Scan(&d.ID, &d.CreatedAt, &d.Title, &d.Notes, &d.Currency, &total, &productID, &d.ProductName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuoteDetail{}, ErrQuoteNotFound
		}
		return QuoteDetail{}, fmt.Errorf("get quote %d: %w", id, err)
	}
	d.Total = parseMoney(total)
	d.ProductID = productID.Int64

	rows, err := r.db.QueryContext(ctx, `
		SELECT position, label, role, percentage, value
		FROM quote_rows
		WHERE quote_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return QuoteDetail{}, fmt.Errorf("query quote rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row QuoteRow
		var pct, value string
		if err := rows.Scan(&row.Position, &row.Label, &row.Role, &pct, &value); err != nil {
			return QuoteDetail{}, fmt.Errorf("scan quote row: %w", err)
		}
		row.Percentage = parseMoney(pct)
		row.Value = parseMoney(value)
		d.Rows = append(d.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return QuoteDetail{}, fmt.Errorf("iterate quote rows: %w", err)
	}

	return d, nil
}

// money renders v with two decimals; NaN and infinities are stored as zero.
func money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero.StringFixed(2)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func parseMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
