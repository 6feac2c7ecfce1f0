package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/innkeeper/server/internal/account"
	"github.com/innkeeper/server/internal/auth"
	"github.com/innkeeper/server/internal/model"
)

// AuthHandler handles the public authentication endpoints.
type AuthHandler struct {
	svc *account.Service
	log *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc *account.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type registerRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName string  `json:"display_name"`
	FamilyName  *string `json:"family_name"`
	Phone       *string `json:"phone"`
	BirthDate   *string `json:"birth_date"`
	Bio         *string `json:"bio"`
}

type sessionResponse struct {
	Account      model.PublicAccount `json:"account"`
	Token        string              `json:"token"`
	RefreshToken string              `json:"refreshToken"`
}

// HandleRegister handles POST /auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []string
	errs = validateEmail(errs, req.Email)
	errs = validatePassword(errs, req.Password)
	errs = validateDisplayName(errs, req.DisplayName)
	errs = validateFamilyName(errs, req.FamilyName)
	errs = validatePhone(errs, req.Phone)
	errs = validateBio(errs, req.Bio)
	birthDate, errs := parseBirthDate(errs, req.BirthDate)
	if len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	acct, pair, err := h.svc.Register(r.Context(), account.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: strings.TrimSpace(req.DisplayName),
		FamilyName:  req.FamilyName,
		Phone:       req.Phone,
		BirthDate:   birthDate,
		Bio:         req.Bio,
	})
	if err != nil {
		// The duplicate message intentionally confirms the email exists;
		// the login path never does.
		if errors.Is(err, account.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		if errors.Is(err, account.ErrPasswordTooShort) {
			respondValidation(w, []string{"password must be at least 6 characters"})
			return
		}
		h.log.Error("registration failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondData(w, http.StatusCreated, "account created", sessionResponse{
		Account:      acct.Public(),
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondValidation(w, []string{"email and password are required"})
		return
	}

	acct, pair, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email, wrong password and disabled account share one body.
		if errors.Is(err, account.ErrInvalidCredentials) || errors.Is(err, account.ErrAccountDisabled) {
			respondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.log.Error("login failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondData(w, http.StatusOK, "login successful", sessionResponse{
		Account:      acct.Public(),
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

// HandleRefresh handles POST /auth/refresh.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondError(w, http.StatusUnauthorized, "refresh token required")
		return
	}

	token, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) || errors.Is(err, auth.ErrTokenInvalid) {
			respondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
			return
		}
		h.log.Error("token refresh failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondData(w, http.StatusOK, "token refreshed", refreshResponse{Token: token})
}

// HandleLogout handles POST /auth/logout. Credentials are stateless, so there
// is nothing to revoke server-side; clients drop their tokens.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, envelope{Success: true, Message: "logged out"})
}
