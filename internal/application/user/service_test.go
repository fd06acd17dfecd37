package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/shopcore/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/shopcore/internal/observability"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
)

type seqIDGenerator struct{ n int }

func (g *seqIDGenerator) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewStore(), &seqIDGenerator{}, observability.Nop())
}

func TestCreateAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Smith",
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	byName, err := svc.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
}

func TestCreateDuplicate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserInput{Username: "alice", Email: "other@example.com"})
	assert.True(t, apperr.IsAlreadyExists(err), "duplicate username: got %v", err)

	_, err = svc.Create(ctx, CreateUserInput{Username: "bob", Email: "alice@example.com"})
	assert.True(t, apperr.IsAlreadyExists(err), "duplicate email: got %v", err)
}

func TestUpdate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateUserInput{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateUserInput{Email: "alice@corp.example.com", FullName: "Alice S."})
	require.NoError(t, err)
	assert.Equal(t, "alice@corp.example.com", updated.Email)

	_, err = svc.Update(ctx, created.ID, UpdateUserInput{Email: "bob@example.com"})
	assert.True(t, apperr.IsAlreadyExists(err), "email taken by another user: got %v", err)
}

func TestDeactivateAndDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, apperr.IsNotFound(err))
}
