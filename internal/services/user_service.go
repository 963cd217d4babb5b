package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sebringj/localstack/internal/models"
	"github.com/sebringj/localstack/internal/storage"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	CreateUser(ctx context.Context, username, password string) (models.User, error)
}

// UserService verifies credentials against the "users" partition and
// provisions accounts. It holds no per-session state.
type UserService struct {
	store storage.Engine
}

// NewUserService creates a new UserService.
func NewUserService(store storage.Engine) *UserService {
	return &UserService{store: store}
}

// Authenticate verifies a username/password pair. An unknown username and a
// wrong password both fail with models.ErrInvalidCredentials so the caller
// cannot enumerate usernames.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, models.ErrValidation
	}

	data, err := s.store.Get(ctx, storage.Key("users", username))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return models.User{}, models.ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("users partition: %w", err)
	}

	user, err := models.UnmarshalUserRecord(data)
	if err != nil {
		return models.User{}, fmt.Errorf("users partition: decode record: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, models.ErrInvalidCredentials
	}
	return user, nil
}

// CreateUser provisions a new account, hashing the password. Duplicate
// usernames are rejected.
func (s *UserService) CreateUser(ctx context.Context, username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, models.ErrValidation
	}

	key := storage.Key("users", username)
	if _, err := s.store.Get(ctx, key); err == nil {
		return models.User{}, models.ErrUserExists
	} else if !errors.Is(err, storage.ErrKeyNotFound) {
		return models.User{}, fmt.Errorf("users partition: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	data, err := user.MarshalRecord()
	if err != nil {
		return models.User{}, fmt.Errorf("encode user record: %w", err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return models.User{}, fmt.Errorf("users partition: %w", err)
	}
	return user, nil
}
