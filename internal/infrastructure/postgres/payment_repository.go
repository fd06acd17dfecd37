package postgres

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/shopcore/internal/domain/payment"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/jackc/pgx/v5"
)

type paymentRepository struct{ tx pgx.Tx }

const paymentColumns = "id, order_id, amount::text, method, status, transaction_id, created_at, updated_at, completed_at"

func (r *paymentRepository) Insert(ctx context.Context, p *payment.Payment) error {
	// payments.order_id carries a unique index: at most one payment per order.
	_, err := r.tx.Exec(ctx, `
		INSERT INTO payments (id, order_id, amount, method, status, transaction_id, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.OrderID, p.Amount.String(), string(p.Method), string(p.Status), p.TransactionID,
		p.CreatedAt, p.UpdatedAt, p.CompletedAt)
	if isUniqueViolation(err) {
		return apperr.AlreadyExists("payment", p.OrderID)
	}
	return err
}

func (r *paymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	return r.findOne(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = $1", id)
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return r.findOne(ctx, "SELECT "+paymentColumns+" FROM payments WHERE order_id = $1", orderID)
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE payments
		SET status = $2, transaction_id = $3, updated_at = $4, completed_at = $5
		WHERE id = $1
	`, p.ID, string(p.Status), p.TransactionID, p.UpdatedAt, p.CompletedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("payment", p.ID)
	}
	return nil
}

func (r *paymentRepository) findOne(ctx context.Context, query, arg string) (*payment.Payment, error) {
	p, err := scanPayment(r.tx.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("payment", arg)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var (
		p      payment.Payment
		amount string
		method string
		status string
	)
	err := row.Scan(&p.ID, &p.OrderID, &amount, &method, &status, &p.TransactionID,
		&p.CreatedAt, &p.UpdatedAt, &p.CompletedAt)
	if err != nil {
		return nil, err
	}
	p.Method = payment.Method(method)
	p.Status = payment.Status(status)
	if p.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	return &p, nil
}
