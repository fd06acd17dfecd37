package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/shopcore/internal/observability"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

type seqIDGenerator struct{ n int }

func (g *seqIDGenerator) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewStore(), &seqIDGenerator{}, observability.Nop())
}

func TestCreateAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		SKU:           "SKU-1",
		Name:          "Widget",
		Category:      "tools",
		Price:         decimal.RequireFromString("9.99"),
		StockQuantity: 5,
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)

	bySKU, err := svc.GetBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySKU.ID)
}

func TestCreateDuplicateSKU(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductInput{SKU: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateProductInput{SKU: "SKU-1", Name: "Other", Price: decimal.NewFromInt(2)})
	assert.True(t, apperr.IsAlreadyExists(err), "got %v", err)
}

func TestAdjustStock(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		SKU: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(1), StockQuantity: 5,
	})
	require.NoError(t, err)

	p, err := svc.AdjustStock(ctx, created.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 2, p.StockQuantity)

	p, err = svc.AdjustStock(ctx, created.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, p.StockQuantity)

	_, err = svc.AdjustStock(ctx, created.ID, -20)
	assert.True(t, apperr.IsInsufficientStock(err), "got %v", err)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		SKU: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(1), StockQuantity: 5,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateProductInput{
		Name:          "Widget v2",
		Price:         decimal.RequireFromString("2.50"),
		StockQuantity: 3,
		Active:        false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", updated.Name)
	assert.False(t, updated.Active)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListFilters(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateProductInput{SKU: "SKU-A", Name: "Hammer", Category: "tools", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateProductInput{SKU: "SKU-B", Name: "Mug", Category: "kitchen", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, a.ID, UpdateProductInput{Name: "Hammer", Category: "tools", Price: decimal.NewFromInt(1), Active: false})
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Mug", active[0].Name)

	tools, err := svc.ListByCategory(ctx, "tools")
	require.NoError(t, err)
	require.Len(t, tools, 1)

	found, err := svc.Search(ctx, "mug")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "SKU-B", found[0].SKU)
}
