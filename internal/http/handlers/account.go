package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/innkeeper/server/internal/account"
	"github.com/innkeeper/server/internal/middleware"
	"github.com/innkeeper/server/internal/model"
)

// AccountHandler handles the authenticated profile endpoints.
type AccountHandler struct {
	svc *account.Service
	log *zap.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(svc *account.Service, log *zap.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, log: log}
}

// HandleProfile handles GET /users/profile.
func (h *AccountHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	acct, err := h.svc.Profile(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			respondError(w, http.StatusNotFound, "account not found")
			return
		}
		h.log.Error("profile lookup failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondData(w, http.StatusOK, "", acct.Public())
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	FamilyName  *string `json:"family_name"`
	Phone       *string `json:"phone"`
	BirthDate   *string `json:"birth_date"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

// HandleUpdateProfile handles PUT /users/profile. Absent fields are left
// untouched.
func (h *AccountHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []string
	if req.DisplayName != nil {
		errs = validateDisplayName(errs, *req.DisplayName)
	}
	errs = validateFamilyName(errs, req.FamilyName)
	errs = validatePhone(errs, req.Phone)
	errs = validateBio(errs, req.Bio)
	errs = validateAvatarURL(errs, req.AvatarURL)
	birthDate, errs := parseBirthDate(errs, req.BirthDate)
	if len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	update := model.ProfileUpdate{
		FamilyName: req.FamilyName,
		Phone:      req.Phone,
		BirthDate:  birthDate,
		Bio:        req.Bio,
		AvatarURL:  req.AvatarURL,
	}
	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		update.DisplayName = &trimmed
	}

	acct, err := h.svc.UpdateProfile(r.Context(), claims.AccountID, update)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			respondError(w, http.StatusNotFound, "account not found")
			return
		}
		h.log.Error("profile update failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondData(w, http.StatusOK, "profile updated", acct.Public())
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword handles PUT /users/change-password.
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondValidation(w, []string{"current_password and new_password are required"})
		return
	}
	if errs := validatePassword(nil, req.NewPassword); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	err := h.svc.ChangePassword(r.Context(), claims.AccountID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrWrongPassword):
			// The caller is already authenticated, so the message may be
			// specific, unlike the login path.
			respondError(w, http.StatusUnauthorized, "current password incorrect")
		case errors.Is(err, account.ErrPasswordTooShort):
			respondValidation(w, []string{"new password must be at least 6 characters"})
		case errors.Is(err, account.ErrNotFound):
			respondError(w, http.StatusNotFound, "account not found")
		default:
			h.log.Error("password change failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	respond(w, http.StatusOK, envelope{Success: true, Message: "password changed"})
}

// HandleDeactivate handles DELETE /users/profile (soft delete).
func (h *AccountHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.svc.Deactivate(r.Context(), claims.AccountID); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			respondError(w, http.StatusNotFound, "account not found")
			return
		}
		h.log.Error("deactivation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(w, http.StatusOK, envelope{Success: true, Message: "account deactivated"})
}
