package memory

import (
	"context"

	"github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

type paymentRepository struct{ tx *memTx }

func (r *paymentRepository) Insert(ctx context.Context, p *payment.Payment) error {
	_ = ctx
	if _, exists := r.tx.store.payments[p.ID]; exists {
		return apperr.AlreadyExists("payment", p.ID)
	}
	// One payment per order, same guarantee the unique index gives postgres.
	if _, exists := r.tx.store.paymentByOrder[p.OrderID]; exists {
		return apperr.AlreadyExists("payment", p.OrderID)
	}
	journalPayment(r.tx, p.ID)
	journalPaymentIndex(r.tx, p.OrderID)
	r.tx.store.payments[p.ID] = p.Clone()
	r.tx.store.paymentByOrder[p.OrderID] = p.ID
	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	_ = ctx
	p, ok := r.tx.store.payments[id]
	if !ok {
		return nil, apperr.NotFound("payment", id)
	}
	return p.Clone(), nil
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	_ = ctx
	id, ok := r.tx.store.paymentByOrder[orderID]
	if !ok {
		return nil, apperr.NotFound("payment", orderID)
	}
	return r.FindByID(ctx, id)
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	_ = ctx
	if _, exists := r.tx.store.payments[p.ID]; !exists {
		return apperr.NotFound("payment", p.ID)
	}
	journalPayment(r.tx, p.ID)
	r.tx.store.payments[p.ID] = p.Clone()
	return nil
}
