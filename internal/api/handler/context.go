package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rbac-labs/user-service/internal/api/middleware"
	"github.com/rbac-labs/user-service/internal/core/domain"
)

// ctxActor extracts the Actor injected by the Auth middleware and fast-fails
// when it is absent: presence proves the middleware ran, and no handler
// below this point may execute without a resolved identity.
func ctxActor(c echo.Context) (domain.Actor, error) {
	actor, ok := c.Get(middleware.CtxActor).(domain.Actor)
	if !ok || actor.ID == 0 {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return actor, nil
}

// ctxToken returns the raw bearer token stored by the Auth middleware.
func ctxToken(c echo.Context) string {
	token, _ := c.Get(middleware.CtxToken).(string)
	return token
}
