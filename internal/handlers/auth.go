package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"quizwhiz-backend/internal/middleware"
	"quizwhiz-backend/internal/models"
)

// Authenticator is the subset of services.AuthService the handlers use.
type Authenticator interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthTokens, error)
	AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.AuthTokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
}

type ProfileReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type AuthHandler struct {
	auth     Authenticator
	profiles ProfileReader
}

func NewAuthHandler(auth Authenticator, profiles ProfileReader) *AuthHandler {
	return &AuthHandler{auth: auth, profiles: profiles}
}

// Register creates or updates the profile for an email and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.auth.Register(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.auth.AdminLogin(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.auth.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.auth.Logout(r.Context(), req.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
