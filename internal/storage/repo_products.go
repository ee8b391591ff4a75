package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrProductNotFound = errors.New("product not found")

// Product is a catalogue entry; Cost anchors the breakdown sheet opened for it.
type Product struct {
	ID     int64
	Name   string
	Cost   float64
	Notes  string
	Active bool
}

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, cost, COALESCE(notes, ''), active
		FROM products
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Cost, &p.Notes, &p.Active); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (Product, bool, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, cost, COALESCE(notes, ''), active
		FROM products
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Cost, &p.Notes, &p.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, false, nil
		}
		return Product{}, false, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, true, nil
}

func (r *ProductRepo) Create(ctx context.Context, p Product) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products (name, cost, notes, active)
		VALUES (?, ?, ?, ?)
	`, p.Name, p.Cost, p.Notes, p.Active)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read product id: %w", err)
	}
	return id, nil
}

func (r *ProductRepo) Update(ctx context.Context, p Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET
			name = ?,
			cost = ?,
			notes = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Name, p.Cost, p.Notes, p.Active, p.ID)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
