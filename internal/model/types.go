package model

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a guest account. The password hash never crosses the
// trust boundary: it is excluded from JSON and from PublicAccount.
type Account struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	DisplayName   string     `db:"display_name" json:"display_name"`
	FamilyName    *string    `db:"family_name" json:"family_name,omitempty"`
	Phone         *string    `db:"phone" json:"phone,omitempty"`
	BirthDate     *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Bio           *string    `db:"bio" json:"bio,omitempty"`
	AvatarURL     *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Active        bool       `db:"active" json:"active"`
	EmailVerified bool       `db:"email_verified" json:"email_verified"`
	PhoneVerified bool       `db:"phone_verified" json:"phone_verified"`
	LastLoginAt   *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// PublicAccount is the view of an account returned by the API.
type PublicAccount struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"display_name"`
	FamilyName    *string    `json:"family_name,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	Bio           *string    `json:"bio,omitempty"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	Active        bool       `json:"active"`
	EmailVerified bool       `json:"email_verified"`
	PhoneVerified bool       `json:"phone_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Public returns the account with the password hash stripped.
func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:            a.ID,
		Email:         a.Email,
		DisplayName:   a.DisplayName,
		FamilyName:    a.FamilyName,
		Phone:         a.Phone,
		BirthDate:     a.BirthDate,
		Bio:           a.Bio,
		AvatarURL:     a.AvatarURL,
		Active:        a.Active,
		EmailVerified: a.EmailVerified,
		PhoneVerified: a.PhoneVerified,
		LastLoginAt:   a.LastLoginAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// NewAccountParams carries the fields needed to create an account.
type NewAccountParams struct {
	Email        string
	PasswordHash string
	DisplayName  string
	FamilyName   *string
	Phone        *string
	BirthDate    *time.Time
	Bio          *string
}

// ProfileUpdate carries the optional fields of a partial profile update.
// Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName *string
	FamilyName  *string
	Phone       *string
	BirthDate   *time.Time
	Bio         *string
	AvatarURL   *string
}

// Empty reports whether the update would change nothing.
func (u ProfileUpdate) Empty() bool {
	return u.DisplayName == nil && u.FamilyName == nil && u.Phone == nil &&
		u.BirthDate == nil && u.Bio == nil && u.AvatarURL == nil
}
