package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

func TestReserve(t *testing.T) {
	p, err := New("p-1", "SKU-1", "Widget", decimal.RequireFromString("9.99"), 5)
	require.NoError(t, err)

	require.NoError(t, p.Reserve(3))
	assert.Equal(t, 2, p.StockQuantity)

	err = p.Reserve(3)
	require.True(t, apperr.IsInsufficientStock(err), "got %v", err)
	assert.Equal(t, 2, p.StockQuantity, "failed reservation must not change stock")

	var stockErr *apperr.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p-1", stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)
}

func TestReserveExactStock(t *testing.T) {
	p, err := New("p-1", "SKU-1", "Widget", decimal.NewFromInt(1), 4)
	require.NoError(t, err)

	require.NoError(t, p.Reserve(4))
	assert.Equal(t, 0, p.StockQuantity)
}

func TestRelease(t *testing.T) {
	p, err := New("p-1", "SKU-1", "Widget", decimal.NewFromInt(1), 0)
	require.NoError(t, err)

	require.NoError(t, p.Release(2))
	assert.Equal(t, 2, p.StockQuantity)
}

func TestInvalidQuantities(t *testing.T) {
	p, err := New("p-1", "SKU-1", "Widget", decimal.NewFromInt(1), 5)
	require.NoError(t, err)

	assert.ErrorIs(t, p.Reserve(0), ErrInvalidQuantity)
	assert.ErrorIs(t, p.Release(-1), ErrInvalidQuantity)
}

func TestNewValidation(t *testing.T) {
	_, err := New("p-1", "", "Widget", decimal.NewFromInt(1), 0)
	assert.ErrorIs(t, err, ErrSKURequired)

	_, err = New("p-1", "SKU-1", "", decimal.NewFromInt(1), 0)
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = New("p-1", "SKU-1", "Widget", decimal.NewFromInt(-1), 0)
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = New("p-1", "SKU-1", "Widget", decimal.NewFromInt(1), -1)
	assert.ErrorIs(t, err, ErrNegativeStock)
}
