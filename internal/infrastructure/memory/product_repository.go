package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Zhima-Mochi/shopcore/internal/domain/catalog"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

type productRepository struct{ tx *memTx }

func (r *productRepository) Insert(ctx context.Context, p *catalog.Product) error {
	_ = ctx
	if _, exists := r.tx.store.products[p.ID]; exists {
		return apperr.AlreadyExists("product", p.ID)
	}
	for _, existing := range r.tx.store.products {
		if existing.SKU == p.SKU {
			return apperr.AlreadyExists("product", p.SKU)
		}
	}
	journalProduct(r.tx, p.ID)
	r.tx.store.products[p.ID] = p.Clone()
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	_ = ctx
	p, ok := r.tx.store.products[id]
	if !ok {
		return nil, apperr.NotFound("product", id)
	}
	return p.Clone(), nil
}

func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	_ = ctx
	for _, p := range r.tx.store.products {
		if p.SKU == sku {
			return p.Clone(), nil
		}
	}
	return nil, apperr.NotFound("product", sku)
}

func (r *productRepository) FindAll(ctx context.Context) ([]*catalog.Product, error) {
	_ = ctx
	return r.collect(func(*catalog.Product) bool { return true }), nil
}

func (r *productRepository) FindActive(ctx context.Context) ([]*catalog.Product, error) {
	_ = ctx
	return r.collect(func(p *catalog.Product) bool { return p.Active }), nil
}

func (r *productRepository) FindByCategory(ctx context.Context, category string) ([]*catalog.Product, error) {
	_ = ctx
	return r.collect(func(p *catalog.Product) bool { return p.Category == category }), nil
}

func (r *productRepository) SearchByName(ctx context.Context, term string) ([]*catalog.Product, error) {
	_ = ctx
	lowered := strings.ToLower(term)
	return r.collect(func(p *catalog.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), lowered)
	}), nil
}

func (r *productRepository) Update(ctx context.Context, p *catalog.Product) error {
	_ = ctx
	if _, exists := r.tx.store.products[p.ID]; !exists {
		return apperr.NotFound("product", p.ID)
	}
	journalProduct(r.tx, p.ID)
	r.tx.store.products[p.ID] = p.Clone()
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	if _, exists := r.tx.store.products[id]; !exists {
		return apperr.NotFound("product", id)
	}
	journalProduct(r.tx, id)
	delete(r.tx.store.products, id)
	return nil
}

func (r *productRepository) collect(keep func(*catalog.Product) bool) []*catalog.Product {
	out := make([]*catalog.Product, 0, len(r.tx.store.products))
	for _, p := range r.tx.store.products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
