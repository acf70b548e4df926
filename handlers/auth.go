package handlers

import (
	"net/http"

	"github.com/CrowderSoup/gamific/services"
)

// AuthHandler handles authentication-related endpoints. Sessions are
// issued by the identity provider; these only inspect or end them.
type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// VerifyToken returns the session behind the caller's token.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "valid",
		"session": session,
	})
}

// Logout revokes the caller's token for the rest of its lifetime.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	if err := h.authService.Revoke(r.Context(), session); err != nil {
		respondError(w, "revoking token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
