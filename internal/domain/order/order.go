package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrUserRequired    = errors.New("order: user id is required")
	ErrNoLines         = errors.New("order: at least one line is required")
	ErrInvalidQuantity = errors.New("order: quantity must be greater than zero")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusDelivered Status = "DELIVERED"
)

// ParseStatus validates a caller-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusDelivered:
		return Status(s), nil
	}
	return "", fmt.Errorf("order: unknown status %q", s)
}

// Line is one ordered product. UnitPrice is captured from the product at
// creation time and never changes afterwards, so order history stays stable
// when catalog prices move.
type Line struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID          string
	UserID      string
	Lines       []Line
	Status      Status
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// New builds a PENDING order from captured lines. TotalAmount is derived once
// here and is never recomputed.
func New(id, userID string, lines []Line) (*Order, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}

	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		total = total.Add(line.Subtotal())
	}

	now := time.Now().UTC()
	return &Order{
		ID:          id,
		UserID:      userID,
		Lines:       append([]Line(nil), lines...),
		Status:      StatusPending,
		TotalAmount: total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetStatus overwrites the status unconditionally; any status may follow any
// other at this layer. Transitioning to DELIVERED stamps CompletedAt.
func (o *Order) SetStatus(s Status) {
	o.Status = s
	if s == StatusDelivered {
		now := time.Now().UTC()
		o.CompletedAt = &now
	}
	o.touch()
}

// Cancel moves the order to CANCELLED. Only PENDING and CONFIRMED orders may
// be cancelled.
func (o *Order) Cancel() error {
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return apperr.InvalidState("order", o.ID, string(o.Status), "cancel")
	}
	o.Status = StatusCancelled
	o.touch()
	return nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	if o.CompletedAt != nil {
		at := *o.CompletedAt
		clone.CompletedAt = &at
	}
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
