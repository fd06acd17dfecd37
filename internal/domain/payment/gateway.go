package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway charges an order through an external payment provider. The call may
// be slow; callers bound it with a context deadline and treat expiry as a
// declined charge.
type Gateway interface {
	Charge(ctx context.Context, orderID string, amount decimal.Decimal, method Method) (bool, error)
}
