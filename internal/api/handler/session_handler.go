package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rbac-labs/user-service/internal/core/ports"
)

// SessionHandler exposes the caller's own sessions.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List returns the live sessions of the calling user. Sessions are
// self-scoped only; there is no cross-user session browsing.
//
// @Summary      List own sessions
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/sessions [get]
func (h *SessionHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	sessions, err := h.sessions.ListForUser(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionResponse{
			ID:           s.ID,
			IP:           s.IP,
			UserAgent:    s.UserAgent,
			CreatedAt:    s.CreatedAt,
			LastActivity: s.LastActivity,
			ExpiresAt:    s.ExpiresAt,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
