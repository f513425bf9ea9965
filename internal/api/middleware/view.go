package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// RequireView admits a request only while the session is in one of the
// allowed views. Nothing is served from the loading view.
func RequireView(sessions SessionSnapshot, allowedViews ...domain.ViewState) echo.MiddlewareFunc {
	allowed := make(map[domain.ViewState]struct{}, len(allowedViews))
	for _, v := range allowedViews {
		allowed[v] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			view := sessions.Snapshot().View()
			if _, ok := allowed[view]; ok {
				return next(c)
			}

			switch view {
			case domain.ViewLoading:
				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is loading")
			case domain.ViewUnauthenticated:
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			default:
				return echo.NewHTTPError(http.StatusForbidden, "already signed in")
			}
		}
	}
}
