package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// IdentityKey is the echo context key holding the request's *domain.Identity.
const IdentityKey = "identity"

// SessionSnapshot is the read side of the session store.
type SessionSnapshot interface {
	Snapshot() domain.SessionState
}

// TokenVerifier checks a session token and returns its subject.
type TokenVerifier interface {
	Subject(token string) (string, error)
}

// Session validates the bearer session token and checks it belongs to the
// identity the session store currently holds. The identity is injected into
// the context under IdentityKey.
func Session(tokens TokenVerifier, sessions SessionSnapshot) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			subject, err := tokens.Subject(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			state := sessions.Snapshot()
			if state.Identity == nil || state.Identity.ID != subject {
				return echo.NewHTTPError(http.StatusUnauthorized, "session ended")
			}

			c.Set(IdentityKey, state.Identity)
			return next(c)
		}
	}
}
