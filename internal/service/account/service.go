// Package account issues credentials and manages the caller's own profile.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/geocoder89/bookmarkhub/internal/domain/user"
	"github.com/geocoder89/bookmarkhub/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Update(ctx context.Context, id int64, req user.EditUserRequest) (user.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID int64, email string) (string, error)
}

type Service struct {
	users  UserStore
	tokens TokenIssuer
	log    *slog.Logger

	hashPassword  func(plain string) (string, error)
	checkPassword func(hash, plain string) error

	dummyOnce sync.Once
	dummyHash string
}

func NewService(users UserStore, tokens TokenIssuer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		users:         users,
		tokens:        tokens,
		log:           log,
		hashPassword:  security.HashPassword,
		checkPassword: security.CheckPassword,
	}
}

// Register stores a new user. A duplicate email is user.ErrEmailTaken; any
// other storage failure is returned to the caller as is.
func (s *Service) Register(ctx context.Context, req user.CredentialsRequest) (user.User, error) {
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, req.Email, hash)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)

	return u, nil
}

// Login returns a signed access token. Unknown email and wrong password are
// both user.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req user.CredentialsRequest) (string, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// burn the same hashing cost as a real comparison
			_ = s.checkPassword(s.dummy(), req.Password)
			return "", user.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := s.checkPassword(u.PasswordHash, req.Password); err != nil {
		return "", user.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// EditProfile applies a partial update to the caller's own record.
func (s *Service) EditProfile(ctx context.Context, userID int64, req user.EditUserRequest) (user.User, error) {
	u, err := s.users.Update(ctx, userID, req)
	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hashPassword("not-a-real-password")
	})
	return s.dummyHash
}
