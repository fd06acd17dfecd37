package user

import (
	"errors"
	"time"
)

var (
	ErrUsernameRequired = errors.New("user: username is required")
	ErrEmailRequired    = errors.New("user: email is required")
)

type User struct {
	ID        string
	Username  string
	Email     string
	FullName  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id, username, email, fullName string) (*User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}

	now := time.Now().UTC()
	return &User{
		ID:        id,
		Username:  username,
		Email:     email,
		FullName:  fullName,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) Deactivate() {
	u.Active = false
	u.touch()
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}
