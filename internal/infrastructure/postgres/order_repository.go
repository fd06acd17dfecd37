package postgres

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/shopcore/internal/domain/order"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/jackc/pgx/v5"
)

type orderRepository struct{ tx pgx.Tx }

const orderColumns = "id, user_id, status, total_amount::text, created_at, updated_at, completed_at"

func (r *orderRepository) Insert(ctx context.Context, o *order.Order) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, status, total_amount, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, o.ID, o.UserID, string(o.Status), o.TotalAmount.String(), o.CreatedAt, o.UpdatedAt, o.CompletedAt)
	if isUniqueViolation(err) {
		return apperr.AlreadyExists("order", o.ID)
	}
	if err != nil {
		return err
	}

	for i, line := range o.Lines {
		_, err := r.tx.Exec(ctx, `
			INSERT INTO order_lines (order_id, line_no, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, o.ID, i, line.ProductID, line.Quantity, line.UnitPrice.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	o, err := scanOrder(r.tx.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("order", id)
	}
	if err != nil {
		return nil, err
	}
	if o.Lines, err = r.findLines(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	return r.findMany(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at")
}

func (r *orderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	return r.findMany(ctx, "SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at", userID)
}

func (r *orderRepository) FindByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	return r.findMany(ctx, "SELECT "+orderColumns+" FROM orders WHERE status = $1 ORDER BY created_at", string(status))
}

// Update persists mutable order state. Lines are immutable after creation and
// are deliberately not rewritten here.
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE orders
		SET status = $2, updated_at = $3, completed_at = $4
		WHERE id = $1
	`, o.ID, string(o.Status), o.UpdatedAt, o.CompletedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("order", o.ID)
	}
	return nil
}

func (r *orderRepository) findMany(ctx context.Context, query string, args ...any) ([]*order.Order, error) {
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var out []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range out {
		if o.Lines, err = r.findLines(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *orderRepository) findLines(ctx context.Context, orderID string) ([]order.Line, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT product_id, quantity, unit_price::text
		FROM order_lines WHERE order_id = $1 ORDER BY line_no
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var (
			line  order.Line
			price string
		)
		if err := rows.Scan(&line.ProductID, &line.Quantity, &price); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = parseDecimal(price); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o      order.Order
		status string
		total  string
	)
	err := row.Scan(&o.ID, &o.UserID, &status, &total, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt)
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	if o.TotalAmount, err = parseDecimal(total); err != nil {
		return nil, err
	}
	return &o, nil
}
