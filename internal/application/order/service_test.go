package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/shopcore/internal/application/inventory"
	"github.com/Zhima-Mochi/shopcore/internal/domain/catalog"
	domain "github.com/Zhima-Mochi/shopcore/internal/domain/order"
	"github.com/Zhima-Mochi/shopcore/internal/domain/user"
	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/shopcore/internal/observability"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/Zhima-Mochi/shopcore/internal/storage"
)

type seqIDGenerator struct{ n int }

func (g *seqIDGenerator) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fixture struct {
	svc   *Service
	store *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	tel := observability.Nop()
	ledger := inventory.NewService(store, tel)
	svc := NewService(store, ledger, &seqIDGenerator{}, tel)
	return &fixture{svc: svc, store: store}
}

func (f *fixture) seedUser(t *testing.T, id string) {
	t.Helper()
	u, err := user.New(id, "user-"+id, id+"@example.com", "")
	require.NoError(t, err)
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Insert(ctx, u)
	}))
}

func (f *fixture) seedProduct(t *testing.T, id, price string, stock int) {
	t.Helper()
	p, err := catalog.New(id, "SKU-"+id, "Product "+id, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		return tx.Products().Insert(ctx, p)
	}))
}

func (f *fixture) stockOf(t *testing.T, id string) int {
	t.Helper()
	var stock int
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		stock = p.StockQuantity
		return nil
	}))
	return stock
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-1")
	f.seedProduct(t, "p-a", "19.99", 5)
	f.seedProduct(t, "p-b", "5.50", 1)

	o, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Lines: []LineInput{
			{ProductID: "p-a", Quantity: 3},
			{ProductID: "p-b", Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("65.47")),
		"got total %s", o.TotalAmount)
	assert.Equal(t, 2, f.stockOf(t, "p-a"))
	assert.Equal(t, 0, f.stockOf(t, "p-b"))

	found, err := f.svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)
	require.Len(t, found.Lines, 2)
	assert.True(t, found.Lines[0].UnitPrice.Equal(decimal.RequireFromString("19.99")))
}

func TestCreateOrderUnknownUser(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "p-a", "1.00", 5)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-missing",
		Lines:  []LineInput{{ProductID: "p-a", Quantity: 1}},
	})
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, 5, f.stockOf(t, "p-a"), "no stock may move for an unknown user")
}

func TestCreateOrderPartialReservationPersists(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-1")
	f.seedProduct(t, "p-a", "10.00", 5)
	f.seedProduct(t, "p-b", "2.00", 1)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Lines: []LineInput{
			{ProductID: "p-a", Quantity: 3},
			{ProductID: "p-b", Quantity: 2},
		},
	})
	require.True(t, apperr.IsInsufficientStock(err), "got %v", err)

	assert.Equal(t, 2, f.stockOf(t, "p-a"), "earlier line's reservation survives the failure")
	assert.Equal(t, 1, f.stockOf(t, "p-b"))

	orders, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders, "no order record is written on failure")
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{UserID: ""})
	assert.True(t, apperr.IsValidation(err))

	_, err = f.svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Lines:  []LineInput{{ProductID: "p-a", Quantity: 0}},
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestCancelReleasesStock(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-1")
	f.seedProduct(t, "p-a", "10.00", 5)

	o, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Lines:  []LineInput{{ProductID: "p-a", Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.stockOf(t, "p-a"))

	require.NoError(t, f.svc.Cancel(context.Background(), o.ID))
	assert.Equal(t, 5, f.stockOf(t, "p-a"))

	cancelled, err := f.svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	err = f.svc.Cancel(context.Background(), o.ID)
	require.True(t, apperr.IsInvalidState(err), "got %v", err)
	assert.Equal(t, 5, f.stockOf(t, "p-a"), "double cancel must not release twice")
}

func TestCancelDeliveredOrder(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-1")
	f.seedProduct(t, "p-a", "10.00", 5)

	o, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Lines:  []LineInput{{ProductID: "p-a", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), o.ID, domain.StatusDelivered)
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), o.ID)
	assert.True(t, apperr.IsInvalidState(err))
	assert.Equal(t, 4, f.stockOf(t, "p-a"), "stock stays reserved for delivered orders")
}

func TestUpdateStatusDeliveredStampsCompletedAt(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-1")
	f.seedProduct(t, "p-a", "10.00", 5)

	o, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Lines:  []LineInput{{ProductID: "p-a", Quantity: 1}},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), o.ID, domain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.Status)
	require.NotNil(t, updated.CompletedAt)
}

func TestListByUserAndStatus(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u-1")
	f.seedUser(t, "u-2")
	f.seedProduct(t, "p-a", "10.00", 10)

	first, err := f.svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Lines:  []LineInput{{ProductID: "p-a", Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-2",
		Lines:  []LineInput{{ProductID: "p-a", Quantity: 1}},
	})
	require.NoError(t, err)

	byUser, err := f.svc.ListByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, first.ID, byUser[0].ID)

	require.NoError(t, f.svc.Cancel(context.Background(), first.ID))

	pending, err := f.svc.ListByStatus(context.Background(), domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	cancelled, err := f.svc.ListByStatus(context.Background(), domain.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, first.ID, cancelled[0].ID)
}
