package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxActor = "actor"
	CtxToken = "token"
)

// Auth resolves the bearer token into an Actor and injects it into context.
// A request that fails resolution is rejected with 401 after the
// invalid-session denial is pushed through the authorizer, so even rejected
// requests leave exactly one audit record.
func Auth(sessions ports.SessionValidator, guard ports.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			meta := RequestMeta(c)

			token, ok := bearerToken(c)
			if !ok {
				_ = guard.DenyInvalidSession(c.Request().Context(), TargetID(c), ActionFromMethod(c.Request().Method), meta)
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed authorization header")
			}

			actor, err := sessions.Resolve(c.Request().Context(), token, meta)
			if err != nil {
				_ = guard.DenyInvalidSession(c.Request().Context(), TargetID(c), ActionFromMethod(c.Request().Method), meta)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			c.Set(CtxActor, actor)
			c.Set(CtxToken, token)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// RequestMeta extracts the client attributes forwarded to the audit trail.
func RequestMeta(c echo.Context) ports.RequestMeta {
	return ports.RequestMeta{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// TargetID parses the :id path parameter; 0 when the route has none.
func TargetID(c echo.Context) int64 {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// ActionFromMethod maps the HTTP verb to the resource action:
// GET→Read, PUT/PATCH→Update, DELETE→Delete. Anything else reads.
func ActionFromMethod(method string) domain.Action {
	switch method {
	case http.MethodPut, http.MethodPatch:
		return domain.ActionUpdate
	case http.MethodDelete:
		return domain.ActionDelete
	default:
		return domain.ActionRead
	}
}
