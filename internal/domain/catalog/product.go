package catalog

import (
	"errors"
	"time"

	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrSKURequired     = errors.New("catalog: sku is required")
	ErrNameRequired    = errors.New("catalog: name is required")
	ErrNegativePrice   = errors.New("catalog: price must be zero or greater")
	ErrNegativeStock   = errors.New("catalog: stock quantity must be zero or greater")
	ErrInvalidQuantity = errors.New("catalog: quantity must be greater than zero")
)

type Product struct {
	ID            string
	SKU           string
	Name          string
	Description   string
	Category      string
	Price         decimal.Decimal
	StockQuantity int
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func New(id, sku, name string, price decimal.Decimal, stockQuantity int) (*Product, error) {
	if sku == "" {
		return nil, ErrSKURequired
	}
	if name == "" {
		return nil, ErrNameRequired
	}
	if price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if stockQuantity < 0 {
		return nil, ErrNegativeStock
	}

	now := time.Now().UTC()
	return &Product{
		ID:            id,
		SKU:           sku,
		Name:          name,
		Price:         price,
		StockQuantity: stockQuantity,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Reserve decrements available stock by quantity. The sufficiency check and
// the decrement happen together so stock can never go negative.
func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.StockQuantity {
		return apperr.InsufficientStock(p.ID, quantity, p.StockQuantity)
	}
	p.StockQuantity -= quantity
	p.touch()
	return nil
}

// Release returns quantity units to available stock. There is no upper bound:
// releases used for compensation always succeed.
func (p *Product) Release(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.StockQuantity += quantity
	p.touch()
	return nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
