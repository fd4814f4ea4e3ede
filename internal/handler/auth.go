package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/yourorg/hrms/internal/domain"
	"github.com/yourorg/hrms/internal/security/audit"
	"github.com/yourorg/hrms/internal/security/middleware"
	"github.com/yourorg/hrms/internal/service"
)

// TokenRevoker is implemented by the optional Redis denylist; logout uses
// it to invalidate the presented token for its remaining lifetime.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// AuthHandler handles registration, login, logout and profile endpoints.
type AuthHandler struct {
	authService *service.AuthService
	auditor     *audit.Recorder
	revoker     TokenRevoker // nil when no revocation store is configured
	logger      *slog.Logger
	development bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, auditor *audit.Recorder, revoker TokenRevoker, logger *slog.Logger, development bool) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		auditor:     auditor,
		revoker:     revoker,
		logger:      logger,
		development: development,
	}
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest represents the change password payload
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// AuthData pairs the organization with its bearer token in register and
// login responses.
type AuthData struct {
	Organization *domain.Organization `json:"organization"`
	Token        string               `json:"token"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Organization name is required")
		return
	}
	if !validEmail(req.Email) {
		respondError(w, http.StatusBadRequest, "Valid email is required")
		return
	}
	if len(req.Password) < 6 {
		respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	org, token, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			respondError(w, http.StatusConflict, "Organization with this email already exists")
			return
		}
		respondDomainError(w, err, "", h.development)
		return
	}

	_, err = h.auditor.Record(org.ID, org.ID,
		"Organization '"+org.Name+"' registered",
		"organization", org.ID,
		map[string]string{"email": org.Email},
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	respondData(w, http.StatusCreated, "Organization registered successfully", AuthData{Organization: org, Token: token})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	org, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	_, err = h.auditor.Record(org.ID, org.ID,
		actorAction(org.ID, "logged in"),
		"organization", org.ID,
		nil,
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	respondData(w, http.StatusOK, "Login successful", AuthData{Organization: org, Token: token})
}

// Logout handles POST /api/auth/logout. The token is denylisted for its
// remaining lifetime when a revocation store is configured; otherwise
// logout is purely the client discarding its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if h.revoker != nil {
		token := middleware.GetTokenFromContext(r.Context())
		// Tokens without an exp claim stay denylisted for a full default
		// lifetime.
		ttl := 24 * time.Hour
		if claims.ExpiresAt != nil {
			ttl = time.Until(claims.ExpiresAt.Time)
		}
		if err := h.revoker.Revoke(r.Context(), token, ttl); err != nil {
			h.logger.Error("failed to revoke token", slog.String("error", err.Error()))
			respondError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
	}

	_, err := h.auditor.Record(claims.OrganizationID, claims.UserID,
		actorAction(claims.UserID, "logged out"),
		"organization", claims.UserID,
		nil,
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Logout successful"})
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	org, err := h.authService.Profile(claims.UserID)
	if err != nil {
		respondDomainError(w, err, "Organization not found", h.development)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: org})
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Old and new passwords are required")
		return
	}

	if err := h.authService.ChangePassword(claims.UserID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			respondError(w, http.StatusBadRequest, "Current password is incorrect")
			return
		}
		respondDomainError(w, err, "Organization not found", h.development)
		return
	}

	_, err := h.auditor.Record(claims.OrganizationID, claims.UserID,
		actorAction(claims.UserID, "changed password"),
		"organization", claims.UserID,
		nil,
		middleware.ClientIP(r),
	)
	if err != nil {
		respondDomainError(w, err, "", h.development)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Password changed successfully"})
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}
