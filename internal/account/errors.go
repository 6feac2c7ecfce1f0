package account

import "errors"

var (
	// ErrEmailTaken indicates registration against an email already bound to
	// an active account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers unknown email and wrong password alike so
	// responses cannot be used to probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled is kept distinct internally; handlers map it to the
	// same response as ErrInvalidCredentials.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrWrongPassword is the change-password failure for an already
	// authenticated caller, so it may carry a specific message.
	ErrWrongPassword = errors.New("current password incorrect")
	// ErrPasswordTooShort rejects new passwords below the minimum length.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrNotFound indicates the account does not exist.
	ErrNotFound = errors.New("account not found")
)
