package handlers

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	maxNameLength = 100
	maxBioLength  = 500
	// bcrypt ignores bytes past 72; longer passwords are rejected outright.
	maxPasswordLength = 72
	minPasswordLength = 6
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

func validateEmail(errs []string, email string) []string {
	email = strings.TrimSpace(email)
	if email == "" {
		return append(errs, "email is required")
	}
	if !emailPattern.MatchString(email) {
		return append(errs, "email must be a valid address")
	}
	return errs
}

func validatePassword(errs []string, password string) []string {
	if password == "" {
		return append(errs, "password is required")
	}
	if len(password) < minPasswordLength {
		return append(errs, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return append(errs, fmt.Sprintf("password must be at most %d characters", maxPasswordLength))
	}
	return errs
}

func validateDisplayName(errs []string, name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return append(errs, "display_name is required")
	}
	if len(name) > maxNameLength {
		return append(errs, fmt.Sprintf("display_name must be at most %d characters", maxNameLength))
	}
	return errs
}

func validateFamilyName(errs []string, name *string) []string {
	if name != nil && len(*name) > maxNameLength {
		return append(errs, fmt.Sprintf("family_name must be at most %d characters", maxNameLength))
	}
	return errs
}

func validatePhone(errs []string, phone *string) []string {
	if phone != nil && !phonePattern.MatchString(*phone) {
		return append(errs, "phone must be a valid E.164 number")
	}
	return errs
}

func validateBio(errs []string, bio *string) []string {
	if bio != nil && len(*bio) > maxBioLength {
		return append(errs, fmt.Sprintf("bio must be at most %d characters", maxBioLength))
	}
	return errs
}

func validateAvatarURL(errs []string, avatarURL *string) []string {
	if avatarURL == nil {
		return errs
	}
	u, err := url.Parse(*avatarURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return append(errs, "avatar_url must be a valid http(s) URL")
	}
	return errs
}

// parseBirthDate validates an optional YYYY-MM-DD birth date. A parsed value
// in the future is rejected.
func parseBirthDate(errs []string, raw *string) (*time.Time, []string) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, errs
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil, append(errs, "birth_date must be a YYYY-MM-DD date")
	}
	if parsed.After(time.Now()) {
		return nil, append(errs, "birth_date must not be in the future")
	}
	return &parsed, errs
}
