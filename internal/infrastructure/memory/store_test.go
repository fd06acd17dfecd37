package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/shopcore/internal/domain/catalog"
	"github.com/Zhima-Mochi/shopcore/internal/domain/order"
	"github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/Zhima-Mochi/shopcore/internal/storage"
)

func seedProduct(t *testing.T, store *Store, id string, stock int) {
	t.Helper()
	p, err := catalog.New(id, "SKU-"+id, "Product "+id, decimal.NewFromInt(10), stock)
	require.NoError(t, err)
	require.NoError(t, store.WithinTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		return tx.Products().Insert(ctx, p)
	}))
}

func TestRollbackRestoresState(t *testing.T) {
	store := NewStore()
	seedProduct(t, store, "p-1", 10)

	boom := errors.New("boom")
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Products().FindByID(ctx, "p-1")
		require.NoError(t, err)
		require.NoError(t, p.Reserve(7))
		require.NoError(t, tx.Products().Update(ctx, p))
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.WithinTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Products().FindByID(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, 10, p.StockQuantity, "rolled back update must not be visible")
		return nil
	})
	require.NoError(t, err)
}

func TestRollbackRemovesInsert(t *testing.T) {
	store := NewStore()

	boom := errors.New("boom")
	p, err := catalog.New("p-1", "SKU-p-1", "Widget", decimal.NewFromInt(1), 1)
	require.NoError(t, err)

	err = store.WithinTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		require.NoError(t, tx.Products().Insert(ctx, p))
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.WithinTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		_, err := tx.Products().FindByID(ctx, "p-1")
		assert.True(t, apperr.IsNotFound(err))
		return nil
	})
	require.NoError(t, err)
}

func TestOnePaymentPerOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	o, err := order.New("o-1", "u-1", []order.Line{{ProductID: "p-1", Quantity: 1, UnitPrice: decimal.NewFromInt(5)}})
	require.NoError(t, err)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Orders().Insert(ctx, o)
	}))

	first, err := payment.New("pay-1", "o-1", o.TotalAmount, payment.MethodCreditCard)
	require.NoError(t, err)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Payments().Insert(ctx, first)
	}))

	second, err := payment.New("pay-2", "o-1", o.TotalAmount, payment.MethodPayPal)
	require.NoError(t, err)
	err = store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Payments().Insert(ctx, second)
	})
	assert.True(t, apperr.IsAlreadyExists(err), "got %v", err)
}

func TestCloneOnRead(t *testing.T) {
	store := NewStore()
	seedProduct(t, store, "p-1", 10)
	ctx := context.Background()

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Products().FindByID(ctx, "p-1")
		require.NoError(t, err)
		p.StockQuantity = 0
		return nil
	}))

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		p, err := tx.Products().FindByID(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, 10, p.StockQuantity, "mutating a read copy must not leak into the store")
		return nil
	}))
}

func TestFindByOrderID(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	p, err := payment.New("pay-1", "o-1", decimal.NewFromInt(5), payment.MethodDebitCard)
	require.NoError(t, err)
	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Payments().Insert(ctx, p)
	}))

	require.NoError(t, store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		found, err := tx.Payments().FindByOrderID(ctx, "o-1")
		require.NoError(t, err)
		assert.Equal(t, "pay-1", found.ID)

		_, err = tx.Payments().FindByOrderID(ctx, "o-2")
		assert.True(t, apperr.IsNotFound(err))
		return nil
	}))
}
