package postgres

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/shopcore/internal/domain/user"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/jackc/pgx/v5"
)

type userRepository struct{ tx pgx.Tx }

const userColumns = "id, username, email, full_name, active, created_at, updated_at"

func (r *userRepository) Insert(ctx context.Context, u *user.User) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO users (id, username, email, full_name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Username, u.Email, u.FullName, u.Active, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.AlreadyExists("user", u.Username)
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *userRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	rows, err := r.tx.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE users
		SET username = $2, email = $3, full_name = $4, active = $5, updated_at = $6
		WHERE id = $1
	`, u.ID, u.Username, u.Email, u.FullName, u.Active, u.UpdatedAt)
	if isUniqueViolation(err) {
		return apperr.AlreadyExists("user", u.Username)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user", u.ID)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, query, arg string) (*user.User, error) {
	u, err := scanUser(r.tx.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user", arg)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
