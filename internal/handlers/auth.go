package handlers

import (
	"errors"
	"net/http"

	"github.com/smartbus/fleet-admin/internal/auth"
	"github.com/smartbus/fleet-admin/internal/models"
	"github.com/smartbus/fleet-admin/internal/store"
)

// AuthHandler handles admin authentication requests.
type AuthHandler struct {
	authService *auth.Service
	store       store.Store
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, st store.Store) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		store:       st,
	}
}

// Login verifies admin credentials and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if !decodeJSON(w, r, &loginReq) {
		return
	}

	if loginReq.Username == "" || loginReq.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	admin, err := h.store.AdminByUsername(r.Context(), loginReq.Username)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !h.authService.CheckPassword(loginReq.Password, admin.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.authService.GenerateToken(admin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token: token,
		Admin: *admin,
	})
}
