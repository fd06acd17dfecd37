package catalog

import "context"

type Repository interface {
	Insert(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	FindActive(ctx context.Context) ([]*Product, error)
	FindByCategory(ctx context.Context, category string) ([]*Product, error)
	SearchByName(ctx context.Context, term string) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
