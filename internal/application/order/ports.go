package order

import "context"

type IDGenerator interface {
	NewID() string
}

// InventoryLedger is the stock-reservation collaborator. Each call commits on
// its own, which is what gives order creation its line-by-line semantics.
type InventoryLedger interface {
	Reserve(ctx context.Context, productID string, quantity int) (int, error)
	Release(ctx context.Context, productID string, quantity int) (int, error)
}
