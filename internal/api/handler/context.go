package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/perfilapp/perfil/internal/api/middleware"
	"github.com/perfilapp/perfil/internal/core/domain"
)

// ctxIdentity returns the identity injected by the Session middleware.
// Its presence proves the middleware ran; without it the route was wired
// unguarded and must not reach the core.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	identity, _ := c.Get(middleware.IdentityKey).(*domain.Identity)
	if identity == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return identity, nil
}
