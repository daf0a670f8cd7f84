package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
)

// Service registers users, issues access tokens and verifies them.
type Service struct {
	users  store.UserStore
	jwt    JWTService
	hasher PasswordHasher
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates the authentication service.
// If logger is nil, a default logger will be used.
func NewService(users store.UserStore, jwt JWTService, hasher PasswordHasher, logger *slog.Logger) *Service {
	if users == nil || jwt == nil || hasher == nil {
		panic("auth service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		jwt:    jwt,
		hasher: hasher,
		logger: logger.With(slog.String("component", "auth_service")),
	}
}

// Register creates a user with a hashed password.
// Returns store.ErrEmailExists when the email is already registered.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		log.Debug("registration rejected: email already registered")
		return nil, store.ErrEmailExists
	case !errors.Is(err, store.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, err
	}

	user, err := domain.NewUser(email, hash)
	if err != nil {
		return nil, err
	}

	// A concurrent registration can still win the unique index; the store
	// reports that as ErrEmailExists too.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration rejected: email already registered")
			return nil, store.ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Login checks credentials and returns a signed access token.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			return "", fmt.Errorf("failed to look up user: %w", err)
		}
		// Spend one comparison so unknown emails take as long as wrong passwords.
		_ = s.hasher.Compare(s.dummy(), password)
		log.Debug("login failed: unknown email")
		return "", ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		log.Debug("login failed: password mismatch", slog.String("user_id", user.ID.String()))
		return "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return token, nil
}

// Verify validates an access token and returns the user it was issued for.
// Returns ErrMissingToken, ErrInvalidToken or ErrExpiredToken on failure.
func (s *Service) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.jwt.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenNotYetValid) {
			return uuid.Nil, ErrInvalidToken
		}
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			s.logger.Warn("failed to build dummy password hash", slog.String("error", err.Error()))
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
