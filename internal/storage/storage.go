// Package storage defines the scoped-transaction port the workflow services
// run against. Every public operation opens one transaction, commits it on a
// nil error, and rolls it back on any error path.
package storage

import (
	"context"

	"github.com/Zhima-Mochi/shopcore/internal/domain/catalog"
	"github.com/Zhima-Mochi/shopcore/internal/domain/order"
	"github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/Zhima-Mochi/shopcore/internal/domain/user"
)

// Tx exposes the typed repositories bound to one open transaction.
type Tx interface {
	Users() user.Repository
	Products() catalog.Repository
	Orders() order.Repository
	Payments() payment.Repository
}

type Store interface {
	// WithinTx runs fn inside a transaction. A nil return commits; any error
	// rolls back and is returned unchanged.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
