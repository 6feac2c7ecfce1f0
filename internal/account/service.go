package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/innkeeper/server/internal/auth"
	"github.com/innkeeper/server/internal/model"
	"github.com/innkeeper/server/internal/repo"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// TokenPair bundles the credentials issued on register/login.
type TokenPair struct {
	Token        string
	RefreshToken string
}

// Service orchestrates the account workflows. All collaborators are injected;
// the service holds no mutable state of its own.
type Service struct {
	accounts repo.AccountRepo
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	log      *zap.Logger
}

// NewService creates an account service.
func NewService(accounts repo.AccountRepo, hasher *auth.PasswordHasher, tokens *auth.TokenService, log *zap.Logger) *Service {
	return &Service{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
	}
}

// NormalizeEmail lower-cases and trims an email so lookups and uniqueness
// checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterParams carries the registration input after boundary validation.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
	FamilyName  *string
	Phone       *string
	BirthDate   *time.Time
	Bio         *string
}

// Register creates a new account and issues its first credential pair.
// The repository's unique index is the authority on duplicates; the
// EmailTaken pre-check only gives a friendlier fast path under no contention.
func (s *Service) Register(ctx context.Context, params RegisterParams) (model.Account, TokenPair, error) {
	if len(params.Password) < MinPasswordLength {
		return model.Account{}, TokenPair{}, ErrPasswordTooShort
	}

	email := NormalizeEmail(params.Email)

	taken, err := s.accounts.EmailTaken(ctx, email)
	if err != nil {
		return model.Account{}, TokenPair{}, fmt.Errorf("uniqueness check: %w", err)
	}
	if taken {
		return model.Account{}, TokenPair{}, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return model.Account{}, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.accounts.Create(ctx, model.NewAccountParams{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  params.DisplayName,
		FamilyName:   params.FamilyName,
		Phone:        params.Phone,
		BirthDate:    params.BirthDate,
		Bio:          params.Bio,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return model.Account{}, TokenPair{}, ErrEmailTaken
		}
		return model.Account{}, TokenPair{}, fmt.Errorf("create account: %w", err)
	}

	pair, err := s.issuePair(created)
	if err != nil {
		// The account row is valid; a later login will succeed.
		return model.Account{}, TokenPair{}, err
	}
	return created, pair, nil
}

// Login authenticates an email/password pair and issues credentials. Unknown
// email, wrong password and disabled account all fail authentication; only
// the disabled case is distinguishable to callers inside this process.
func (s *Service) Login(ctx context.Context, email, password string) (model.Account, TokenPair, error) {
	acct, err := s.accounts.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Account{}, TokenPair{}, ErrInvalidCredentials
		}
		return model.Account{}, TokenPair{}, fmt.Errorf("lookup account: %w", err)
	}

	if !acct.Active {
		return model.Account{}, TokenPair{}, ErrAccountDisabled
	}

	if !s.hasher.Verify(password, acct.PasswordHash) {
		return model.Account{}, TokenPair{}, ErrInvalidCredentials
	}

	// Best effort: a failed stamp must not fail the login.
	if err := s.accounts.UpdateLastLogin(ctx, acct.ID); err != nil {
		s.log.Warn("failed to update last_login_at",
			zap.String("account_id", acct.ID.String()),
			zap.Error(err))
	} else {
		now := time.Now()
		acct.LastLoginAt = &now
	}

	pair, err := s.issuePair(acct)
	if err != nil {
		return model.Account{}, TokenPair{}, err
	}
	return acct, pair, nil
}

// Refresh verifies a refresh token and mints a new access token from its
// claims. Refresh tokens are stateless: expiry is the only invalidation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.IssueAccess(claims.AccountID, claims.Email, claims.DisplayName)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return token, nil
}

// Profile returns the account for an authenticated caller.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (model.Account, error) {
	acct, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("lookup account: %w", err)
	}
	return acct, nil
}

// UpdateProfile applies a partial update to the caller's display fields.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) (model.Account, error) {
	acct, err := s.accounts.UpdateProfile(ctx, id, update)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("update profile: %w", err)
	}
	return acct, nil
}

// ChangePassword re-authenticates the current password before committing a
// new hash. A failed attempt leaves the stored hash unchanged.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	acct, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if !s.hasher.Verify(current, acct.PasswordHash) {
		return ErrWrongPassword
	}
	if len(next) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePasswordHash(ctx, id, hash); err != nil {
		return fmt.Errorf("persist password hash: %w", err)
	}
	return nil
}

// Deactivate soft-deletes the caller's account. Deactivated accounts can no
// longer log in and their email is freed for re-registration.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.accounts.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deactivate account: %w", err)
	}
	return nil
}

func (s *Service) issuePair(acct model.Account) (TokenPair, error) {
	token, err := s.tokens.IssueAccess(acct.ID, acct.Email, acct.DisplayName)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefresh(acct.ID, acct.Email, acct.DisplayName)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return TokenPair{Token: token, RefreshToken: refresh}, nil
}
