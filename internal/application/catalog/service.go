package catalog

import (
	"context"

	domain "github.com/Zhima-Mochi/shopcore/internal/domain/catalog"
	"github.com/Zhima-Mochi/shopcore/internal/observability"
	"github.com/Zhima-Mochi/shopcore/internal/observability/logctx"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/Zhima-Mochi/shopcore/internal/storage"
	"github.com/shopspring/decimal"
)

const catalogService = "catalog"

type IDGenerator interface {
	NewID() string
}

// Service manages the product catalog. Stock changes driven by orders go
// through the inventory ledger, not through here; AdjustStock exists for
// manual corrections.
type Service struct {
	store       storage.Store
	idGenerator IDGenerator
	log         observability.Logger
}

func NewService(store storage.Store, idGen IDGenerator, tel observability.Observability) *Service {
	baseLog := observability.NopLogger()
	if tel != nil {
		baseLog = tel.Logger()
	}
	return &Service{
		store:       store,
		idGenerator: idGen,
		log:         baseLog.With(observability.F("service", catalogService)),
	}
}

type CreateProductInput struct {
	SKU           string
	Name          string
	Description   string
	Category      string
	Price         decimal.Decimal
	StockQuantity int
}

type UpdateProductInput struct {
	Name          string
	Description   string
	Category      string
	Price         decimal.Decimal
	StockQuantity int
	Active        bool
}

func (s *Service) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("sku", input.SKU))

	var created *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		switch _, err := tx.Products().FindBySKU(ctx, input.SKU); {
		case err == nil:
			return apperr.AlreadyExists("product", input.SKU)
		case apperr.IsNotFound(err):
			// sku is free
		default:
			return err
		}

		p, err := domain.New(s.idGenerator.NewID(), input.SKU, input.Name, input.Price, input.StockQuantity)
		if err != nil {
			return err
		}
		p.Description = input.Description
		p.Category = input.Category

		if err := tx.Products().Insert(ctx, p); err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("product_created", observability.F("product_id", created.ID))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, newValidation("product id is required")
	}
	var found *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		found = p
		return nil
	})
	return found, err
}

func (s *Service) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if sku == "" {
		return nil, newValidation("sku is required")
	}
	var found *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Products().FindBySKU(ctx, sku)
		if err != nil {
			return err
		}
		found = p
		return nil
	})
	return found, err
}

func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	return s.collect(ctx, func(ctx context.Context, tx storage.Tx) ([]*domain.Product, error) {
		return tx.Products().FindAll(ctx)
	})
}

func (s *Service) ListActive(ctx context.Context) ([]*domain.Product, error) {
	return s.collect(ctx, func(ctx context.Context, tx storage.Tx) ([]*domain.Product, error) {
		return tx.Products().FindActive(ctx)
	})
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return s.collect(ctx, func(ctx context.Context, tx storage.Tx) ([]*domain.Product, error) {
		return tx.Products().FindByCategory(ctx, category)
	})
}

func (s *Service) Search(ctx context.Context, term string) ([]*domain.Product, error) {
	return s.collect(ctx, func(ctx context.Context, tx storage.Tx) ([]*domain.Product, error) {
		return tx.Products().SearchByName(ctx, term)
	})
}

func (s *Service) Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	if input.Price.IsNegative() {
		return nil, domain.ErrNegativePrice
	}
	if input.StockQuantity < 0 {
		return nil, domain.ErrNegativeStock
	}

	var updated *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		p.Name = input.Name
		p.Description = input.Description
		p.Category = input.Category
		p.Price = input.Price
		p.StockQuantity = input.StockQuantity
		p.Active = input.Active

		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	return updated, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Products().Delete(ctx, id)
	})
}

// AdjustStock applies a signed delta to a product's stock. A delta that would
// take stock negative fails with InsufficientStock.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	var updated *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case delta > 0:
			if err := p.Release(delta); err != nil {
				return err
			}
		case delta < 0:
			if err := p.Reserve(-delta); err != nil {
				return err
			}
		}
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	return updated, err
}

func (s *Service) collect(ctx context.Context, query func(context.Context, storage.Tx) ([]*domain.Product, error)) ([]*domain.Product, error) {
	var out []*domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		ps, err := query(ctx, tx)
		if err != nil {
			return err
		}
		out = ps
		return nil
	})
	return out, err
}

func newValidation(msg string) error {
	return apperr.Validation(msg)
}
