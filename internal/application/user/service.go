package user

import (
	"context"

	domain "github.com/Zhima-Mochi/shopcore/internal/domain/user"
	"github.com/Zhima-Mochi/shopcore/internal/observability"
	"github.com/Zhima-Mochi/shopcore/internal/observability/logctx"
	"github.com/Zhima-Mochi/shopcore/internal/pkg/apperr"
	"github.com/Zhima-Mochi/shopcore/internal/storage"
)

const userService = "user"

type IDGenerator interface {
	NewID() string
}

// Service manages user accounts. Usernames and emails are unique.
type Service struct {
	store       storage.Store
	idGenerator IDGenerator
	log         observability.Logger
}

func NewService(store storage.Store, idGen IDGenerator, tel observability.Observability) *Service {
	baseLog := observability.NopLogger()
	if tel != nil {
		baseLog = tel.Logger()
	}
	return &Service{
		store:       store,
		idGenerator: idGen,
		log:         baseLog.With(observability.F("service", userService)),
	}
}

type CreateUserInput struct {
	Username string
	Email    string
	FullName string
}

type UpdateUserInput struct {
	Email    string
	FullName string
}

func (s *Service) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("username", input.Username))

	var created *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := s.ensureFree(ctx, tx, input.Username, input.Email); err != nil {
			return err
		}

		u, err := domain.New(s.idGenerator.NewID(), input.Username, input.Email, input.FullName)
		if err != nil {
			return err
		}
		if err := tx.Users().Insert(ctx, u); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("user_created", observability.F("user_id", created.ID))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, apperr.Validation("user id is required")
	}
	var found *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		u, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		found = u
		return nil
	})
	return found, err
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	var found *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		u, err := tx.Users().FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		found = u
		return nil
	})
	return found, err
}

func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	var out []*domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		us, err := tx.Users().FindAll(ctx)
		if err != nil {
			return err
		}
		out = us
		return nil
	})
	return out, err
}

func (s *Service) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	if input.Email == "" {
		return nil, domain.ErrEmailRequired
	}

	var updated *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		u, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if input.Email != u.Email {
			switch _, err := tx.Users().FindByEmail(ctx, input.Email); {
			case err == nil:
				return apperr.AlreadyExists("user", input.Email)
			case apperr.IsNotFound(err):
			default:
				return err
			}
		}
		u.Email = input.Email
		u.FullName = input.FullName

		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	return updated, err
}

func (s *Service) Deactivate(ctx context.Context, id string) (*domain.User, error) {
	var updated *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		u, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		u.Deactivate()
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	return updated, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.Users().Delete(ctx, id)
	})
}

func (s *Service) ensureFree(ctx context.Context, tx storage.Tx, username, email string) error {
	switch _, err := tx.Users().FindByUsername(ctx, username); {
	case err == nil:
		return apperr.AlreadyExists("user", username)
	case apperr.IsNotFound(err):
	default:
		return err
	}
	switch _, err := tx.Users().FindByEmail(ctx, email); {
	case err == nil:
		return apperr.AlreadyExists("user", email)
	case apperr.IsNotFound(err):
	default:
		return err
	}
	return nil
}
