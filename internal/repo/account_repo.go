package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/innkeeper/server/internal/model"
)

var (
	// ErrNotFound indicates the account does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail indicates the unique index rejected an insert. The
	// index is the authority for uniqueness; callers treat any pre-check as a
	// fast path only.
	ErrDuplicateEmail = errors.New("email already registered")
)

const accountColumns = `id, email, password_hash, display_name, family_name, phone,
	birth_date, bio, avatar_url, active, email_verified, phone_verified,
	last_login_at, created_at, updated_at`

// AccountRepo defines the persistence operations over accounts.
type AccountRepo interface {
	Create(ctx context.Context, params model.NewAccountParams) (model.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Account, error)
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdateProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) (model.Account, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type accountRepo struct {
	db *sqlx.DB
}

// NewAccountRepo creates an AccountRepo backed by PostgreSQL.
func NewAccountRepo(db *sqlx.DB) AccountRepo {
	return &accountRepo{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Create inserts a new account. New accounts start active with no
// verification flags set.
func (r *accountRepo) Create(ctx context.Context, params model.NewAccountParams) (model.Account, error) {
	query := `
		INSERT INTO accounts (email, password_hash, display_name, family_name, phone, birth_date, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns

	var account model.Account
	err := r.db.GetContext(ctx, &account, query,
		params.Email,
		params.PasswordHash,
		params.DisplayName,
		params.FamilyName,
		params.Phone,
		params.BirthDate,
		params.Bio,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Account{}, ErrDuplicateEmail
		}
		return model.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

// GetByID retrieves an account by ID regardless of active state.
func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("query account by id: %w", err)
	}
	return account, nil
}

// GetByEmail retrieves the account bound to an email. With uniqueness scoped
// to active accounts, several deactivated rows may share an email; the active
// row wins, then the most recently created, so callers can tell a disabled
// account apart from an unknown email.
func (r *accountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE lower(email) = lower($1)
		ORDER BY active DESC, created_at DESC
		LIMIT 1`

	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("query account by email: %w", err)
	}
	return account, nil
}

// EmailTaken reports whether an active account already uses the email.
func (r *accountRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := r.db.GetContext(ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE lower(email) = lower($1) AND active)`, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return taken, nil
}

// UpdateLastLogin stamps last_login_at with the current time.
func (r *accountRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// UpdateProfile applies a partial update and returns the updated account.
func (r *accountRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) (model.Account, error) {
	if update.Empty() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.DisplayName != nil {
		add("display_name", *update.DisplayName)
	}
	if update.FamilyName != nil {
		add("family_name", *update.FamilyName)
	}
	if update.Phone != nil {
		add("phone", *update.Phone)
	}
	if update.BirthDate != nil {
		add("birth_date", *update.BirthDate)
	}
	if update.Bio != nil {
		add("bio", *update.Bio)
	}
	if update.AvatarURL != nil {
		add("avatar_url", *update.AvatarURL)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE accounts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), accountColumns)

	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("update profile: %w", err)
	}
	return account, nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *accountRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes the account. Rows are never physically removed.
func (r *accountRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
