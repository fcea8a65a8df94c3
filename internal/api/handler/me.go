package handler

import (
	"errors"
	"net/http"

	"github.com/chargeroute/chargeroute/internal/api/models"
	"github.com/chargeroute/chargeroute/internal/api/response"
	"github.com/chargeroute/chargeroute/internal/auth"
)

// MeHandler handles the authenticated user's profile endpoint.
type MeHandler struct {
	authService *auth.Service
}

// NewMeHandler creates a new MeHandler.
func NewMeHandler(authService *auth.Service) *MeHandler {
	return &MeHandler{
		authService: authService,
	}
}

// GetMe handles GET /v1/me - returns the authenticated user's profile.
func (h *MeHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.InternalError(w, r, "failed to load user")
		return
	}

	me := models.Me{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: models.Timestamp(user.CreatedAt),
	}
	response.JSON(w, r, http.StatusOK, me)
}
