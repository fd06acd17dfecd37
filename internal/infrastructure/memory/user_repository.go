package memory

import (
	"context"
	"sort"

	"github.com/Zhima-Mochi/shopcore/internal/domain/user"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

type userRepository struct{ tx *memTx }

func (r *userRepository) Insert(ctx context.Context, u *user.User) error {
	_ = ctx
	if _, exists := r.tx.store.users[u.ID]; exists {
		return apperr.AlreadyExists("user", u.ID)
	}
	journalUser(r.tx, u.ID)
	r.tx.store.users[u.ID] = u.Clone()
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	_ = ctx
	u, ok := r.tx.store.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	return u.Clone(), nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	_ = ctx
	for _, u := range r.tx.store.users {
		if u.Username == username {
			return u.Clone(), nil
		}
	}
	return nil, apperr.NotFound("user", username)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	_ = ctx
	for _, u := range r.tx.store.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, apperr.NotFound("user", email)
}

func (r *userRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	_ = ctx
	out := make([]*user.User, 0, len(r.tx.store.users))
	for _, u := range r.tx.store.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	_ = ctx
	if _, exists := r.tx.store.users[u.ID]; !exists {
		return apperr.NotFound("user", u.ID)
	}
	journalUser(r.tx, u.ID)
	r.tx.store.users[u.ID] = u.Clone()
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	if _, exists := r.tx.store.users[id]; !exists {
		return apperr.NotFound("user", id)
	}
	journalUser(r.tx, id)
	delete(r.tx.store.users, id)
	return nil
}
