// Package services contains server-side business logic. This file implements
// AuthService, which handles registration, login/logout, and validation of
// opaque session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/cloudstore/internal/common"
	"github.com/dmitrijs2005/cloudstore/internal/dbx"
	"github.com/dmitrijs2005/cloudstore/internal/logging"
	"github.com/dmitrijs2005/cloudstore/internal/server/auth"
	"github.com/dmitrijs2005/cloudstore/internal/server/models"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/repomanager"
)

// AuthService provides authentication-related operations:
//   - Register: create users
//   - Login: verify credentials and issue a session token
//   - Logout: revoke a session token
//   - ValidateToken: resolve a token to the caller's identity
//
// Sessions are single-slot: issuing a new token silently revokes the
// previous one for that user.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      auth.TokenSource
	logger      logging.Logger
}

// NewAuthService constructs an AuthService using repositories and the
// pluggable hashing/token capabilities.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, tokens auth.TokenSource, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger.With("module", "auth_service"),
	}
}

// Login resolves login first against email, falling back to username for
// backward compatibility, verifies the password, and issues a fresh token
// that overwrites any previous session.
func (s *AuthService) Login(ctx context.Context, login string, password string) (string, error) {
	s.logger.Info(ctx, "login attempt", "login", login)

	var token string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByEmail(ctx, login)
		if errors.Is(err, common.ErrorNotFound) {
			user, err = repo.FindByUsername(ctx, login)
		}
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorInvalidCredentials
			}
			return fmt.Errorf("error searching user: %w", err)
		}

		if !s.hasher.Matches(password, user.PasswordHash) {
			s.logger.Warn(ctx, "login failed: bad credentials", "login", login)
			return common.ErrorInvalidCredentials
		}

		token = s.tokens.NewToken()
		if err := repo.UpdateToken(ctx, user.ID, &token); err != nil {
			return fmt.Errorf("error saving token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "login successful", "login", login)
	return token, nil
}

// Logout clears the session of whichever user currently holds the token.
// Unknown or already-cleared tokens are a no-op, not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return fmt.Errorf("error searching token: %w", err)
		}

		if err := repo.UpdateToken(ctx, user.ID, nil); err != nil {
			return fmt.Errorf("error clearing token: %w", err)
		}
		s.logger.Info(ctx, "user logged out", "username", user.Username)
		return nil
	})
}

// ValidateToken resolves a bearer token to the caller's identity. The
// returned identity is the user's email if set, else the username; callers
// must use it as their scoping key.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", common.ErrorMissingToken
	}

	normalized := strings.TrimPrefix(token, common.BearerPrefix)

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByToken(ctx, normalized)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorInvalidToken
		}
		return "", fmt.Errorf("error searching token: %w", err)
	}

	s.logger.Debug(ctx, "token validated", "username", user.Username)
	if user.Email != "" {
		return user.Email, nil
	}
	return user.Username, nil
}

// Register creates a new user with no active session. Username existence is
// checked before email existence.
func (s *AuthService) Register(ctx context.Context, username string, password string, email string) error {
	s.logger.Info(ctx, "registering new user", "username", username, "email", email)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		taken, err := repo.ExistsByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("error checking username: %w", err)
		}
		if taken {
			return common.ErrorUsernameTaken
		}

		taken, err = repo.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("error checking email: %w", err)
		}
		if taken {
			return common.ErrorEmailTaken
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("error hashing password: %w", err)
		}

		user := &models.User{Username: username, Email: email, PasswordHash: hash}
		if _, err := repo.Create(ctx, user); err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}

		s.logger.Info(ctx, "user registered", "username", username)
		return nil
	})
}
