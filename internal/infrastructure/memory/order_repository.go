package memory

import (
	"context"
	"sort"

	"github.com/Zhima-Mochi/shopcore/internal/domain/order"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

type orderRepository struct{ tx *memTx }

func (r *orderRepository) Insert(ctx context.Context, o *order.Order) error {
	_ = ctx
	if _, exists := r.tx.store.orders[o.ID]; exists {
		return apperr.AlreadyExists("order", o.ID)
	}
	journalOrder(r.tx, o.ID)
	r.tx.store.orders[o.ID] = o.Clone()
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	_ = ctx
	o, ok := r.tx.store.orders[id]
	if !ok {
		return nil, apperr.NotFound("order", id)
	}
	return o.Clone(), nil
}

func (r *orderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	_ = ctx
	return r.collect(func(*order.Order) bool { return true }), nil
}

func (r *orderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	_ = ctx
	return r.collect(func(o *order.Order) bool { return o.UserID == userID }), nil
}

func (r *orderRepository) FindByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	_ = ctx
	return r.collect(func(o *order.Order) bool { return o.Status == status }), nil
}

func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	_ = ctx
	if _, exists := r.tx.store.orders[o.ID]; !exists {
		return apperr.NotFound("order", o.ID)
	}
	journalOrder(r.tx, o.ID)
	r.tx.store.orders[o.ID] = o.Clone()
	return nil
}

func (r *orderRepository) collect(keep func(*order.Order) bool) []*order.Order {
	out := make([]*order.Order, 0, len(r.tx.store.orders))
	for _, o := range r.tx.store.orders {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
