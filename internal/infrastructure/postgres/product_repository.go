package postgres

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/shopcore/internal/domain/catalog"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/jackc/pgx/v5"
)

type productRepository struct{ tx pgx.Tx }

const productColumns = "id, sku, name, description, category, price::text, stock_quantity, active, created_at, updated_at"

func (r *productRepository) Insert(ctx context.Context, p *catalog.Product) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO products (id, sku, name, description, category, price, stock_quantity, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.SKU, p.Name, p.Description, p.Category, p.Price.String(), p.StockQuantity, p.Active, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.AlreadyExists("product", p.SKU)
	}
	return err
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	return r.findOne(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
}

func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	return r.findOne(ctx, "SELECT "+productColumns+" FROM products WHERE sku = $1", sku)
}

func (r *productRepository) FindAll(ctx context.Context) ([]*catalog.Product, error) {
	return r.findMany(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at")
}

func (r *productRepository) FindActive(ctx context.Context) ([]*catalog.Product, error) {
	return r.findMany(ctx, "SELECT "+productColumns+" FROM products WHERE active ORDER BY created_at")
}

func (r *productRepository) FindByCategory(ctx context.Context, category string) ([]*catalog.Product, error) {
	return r.findMany(ctx, "SELECT "+productColumns+" FROM products WHERE category = $1 ORDER BY created_at", category)
}

func (r *productRepository) SearchByName(ctx context.Context, term string) ([]*catalog.Product, error) {
	return r.findMany(ctx,
		"SELECT "+productColumns+" FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY created_at", term)
}

func (r *productRepository) Update(ctx context.Context, p *catalog.Product) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE products
		SET sku = $2, name = $3, description = $4, category = $5, price = $6,
		    stock_quantity = $7, active = $8, updated_at = $9
		WHERE id = $1
	`, p.ID, p.SKU, p.Name, p.Description, p.Category, p.Price.String(), p.StockQuantity, p.Active, p.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.AlreadyExists("product", p.SKU)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product", p.ID)
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product", id)
	}
	return nil
}

func (r *productRepository) findOne(ctx context.Context, query, arg string) (*catalog.Product, error) {
	p, err := scanProduct(r.tx.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("product", arg)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) findMany(ctx context.Context, query string, args ...any) ([]*catalog.Product, error) {
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var (
		p     catalog.Product
		price string
	)
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &price,
		&p.StockQuantity, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Price, err = parseDecimal(price); err != nil {
		return nil, err
	}
	return &p, nil
}
