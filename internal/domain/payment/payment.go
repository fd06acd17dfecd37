package payment

import (
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/shopspring/decimal"
)

var ErrOrderRequired = errors.New("payment: order id is required")

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusRefunded   Status = "REFUNDED"
)

type Method string

const (
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodDebitCard    Method = "DEBIT_CARD"
	MethodPayPal       Method = "PAYPAL"
	MethodBankTransfer Method = "BANK_TRANSFER"
)

// ParseMethod validates a caller-supplied payment method string.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodCreditCard, MethodDebitCard, MethodPayPal, MethodBankTransfer:
		return Method(s), nil
	}
	return "", fmt.Errorf("payment: unknown method %q", s)
}

// Payment tracks a single charge attempt for an order. Status moves
// PENDING -> PROCESSING -> COMPLETED | FAILED, and COMPLETED -> REFUNDED is
// the only exit from a terminal success state. FAILED is terminal.
type Payment struct {
	ID            string
	OrderID       string
	Amount        decimal.Decimal
	Method        Method
	Status        Status
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

// New builds a PENDING payment. Amount is copied from the order total at
// creation time.
func New(id, orderID string, amount decimal.Decimal, method Method) (*Payment, error) {
	if orderID == "" {
		return nil, ErrOrderRequired
	}

	now := time.Now().UTC()
	return &Payment{
		ID:        id,
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// BeginProcessing moves a PENDING payment to PROCESSING.
func (p *Payment) BeginProcessing() error {
	if p.Status != StatusPending {
		return apperr.InvalidState("payment", p.ID, string(p.Status), "process")
	}
	p.Status = StatusProcessing
	p.touch()
	return nil
}

// Complete marks a PROCESSING payment as COMPLETED, stamping CompletedAt and
// the gateway transaction identifier.
func (p *Payment) Complete(transactionID string) error {
	if p.Status != StatusProcessing {
		return apperr.InvalidState("payment", p.ID, string(p.Status), "complete")
	}
	p.Status = StatusCompleted
	p.TransactionID = transactionID
	now := time.Now().UTC()
	p.CompletedAt = &now
	p.touch()
	return nil
}

// Fail marks a PROCESSING payment as FAILED. FAILED is terminal.
func (p *Payment) Fail() error {
	if p.Status != StatusProcessing {
		return apperr.InvalidState("payment", p.ID, string(p.Status), "fail")
	}
	p.Status = StatusFailed
	p.touch()
	return nil
}

// Refund moves a COMPLETED payment to REFUNDED.
func (p *Payment) Refund() error {
	if p.Status != StatusCompleted {
		return apperr.InvalidState("payment", p.ID, string(p.Status), "refund")
	}
	p.Status = StatusRefunded
	p.touch()
	return nil
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		clone.CompletedAt = &at
	}
	return &clone
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now().UTC()
}
