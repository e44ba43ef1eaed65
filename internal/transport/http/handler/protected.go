package handler

import (
	"context"
	"net/http"

	"github.com/Santiago1809/auth-ms/internal/domain"
	"github.com/Santiago1809/auth-ms/internal/transport/http/middleware"
)

type userGetter interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
}

// ProtectedHandler serves the authenticated account endpoints.
type ProtectedHandler struct {
	users userGetter
}

func NewProtectedHandler(users userGetter) *ProtectedHandler {
	return &ProtectedHandler{users: users}
}

// Profile returns the full account record of the session owner. Reachable
// only through the verified group.
func (h *ProtectedHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.users.GetByIdentifier(r.Context(), claims.Username)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UserInfo echoes the session claims. Available to any authenticated user,
// verified or not.
func (h *ProtectedHandler) UserInfo(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username": claims.Username,
		"role":     claims.Role,
		"user_id":  claims.UserID,
	})
}
