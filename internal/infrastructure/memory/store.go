// Package memory provides an in-memory storage backend. It is the dev/test
// twin of the postgres backend: one big lock per transaction and an undo
// journal so a failed WithinTx leaves state exactly as it was.
package memory

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/shopcore/internal/domain/catalog"
	"github.com/Zhima-Mochi/shopcore/internal/domain/order"
	"github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/Zhima-Mochi/shopcore/internal/domain/user"
	"github.com/Zhima-Mochi/shopcore/internal/storage"
)

type Store struct {
	mu             sync.Mutex
	users          map[string]*user.User
	products       map[string]*catalog.Product
	orders         map[string]*order.Order
	payments       map[string]*payment.Payment
	paymentByOrder map[string]string // order id -> payment id, the unique index
}

func NewStore() *Store {
	return &Store{
		users:          make(map[string]*user.User),
		products:       make(map[string]*catalog.Product),
		orders:         make(map[string]*order.Order),
		payments:       make(map[string]*payment.Payment),
		paymentByOrder: make(map[string]string),
	}
}

// WithinTx serialises transactions behind the store lock. Mutations record
// undo entries; a non-nil error from fn replays them in reverse.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

type memTx struct {
	store *Store
	undo  []func()
}

func (t *memTx) Users() user.Repository       { return &userRepository{tx: t} }
func (t *memTx) Products() catalog.Repository { return &productRepository{tx: t} }
func (t *memTx) Orders() order.Repository     { return &orderRepository{tx: t} }
func (t *memTx) Payments() payment.Repository { return &paymentRepository{tx: t} }

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

// journal helpers: capture the previous value of one key before mutating it.

func journalUser(t *memTx, id string) {
	prev, had := t.store.users[id]
	t.undo = append(t.undo, func() {
		if had {
			t.store.users[id] = prev
		} else {
			delete(t.store.users, id)
		}
	})
}

func journalProduct(t *memTx, id string) {
	prev, had := t.store.products[id]
	t.undo = append(t.undo, func() {
		if had {
			t.store.products[id] = prev
		} else {
			delete(t.store.products, id)
		}
	})
}

func journalOrder(t *memTx, id string) {
	prev, had := t.store.orders[id]
	t.undo = append(t.undo, func() {
		if had {
			t.store.orders[id] = prev
		} else {
			delete(t.store.orders, id)
		}
	})
}

func journalPayment(t *memTx, id string) {
	prev, had := t.store.payments[id]
	t.undo = append(t.undo, func() {
		if had {
			t.store.payments[id] = prev
		} else {
			delete(t.store.payments, id)
		}
	})
}

func journalPaymentIndex(t *memTx, orderID string) {
	prev, had := t.store.paymentByOrder[orderID]
	t.undo = append(t.undo, func() {
		if had {
			t.store.paymentByOrder[orderID] = prev
		} else {
			delete(t.store.paymentByOrder, orderID)
		}
	})
}
