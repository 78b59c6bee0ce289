package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rbac-labs/user-service/internal/core/domain"
)

// RequireRole gates a route to the given roles. It only covers endpoints
// with no specific target record (listing, admin surfaces); per-record
// authorization goes through the decider inside the service layer.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := c.Get(CtxActor).(domain.Actor)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if _, ok := allowed[actor.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
