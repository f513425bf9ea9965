package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/perfilapp/perfil/internal/core/domain"
)

func TestRequireView(t *testing.T) {
	loading := fixedSession{}
	signedOut := fixedSession{state: domain.SessionState{Ready: true}}
	signedIn := signedInAs("u1")

	cases := []struct {
		name     string
		sessions SessionSnapshot
		allowed  domain.ViewState
		code     int
	}{
		{"authenticated route, signed in", signedIn, domain.ViewAuthenticated, http.StatusOK},
		{"authenticated route, signed out", signedOut, domain.ViewAuthenticated, http.StatusUnauthorized},
		{"authenticated route, loading", loading, domain.ViewAuthenticated, http.StatusServiceUnavailable},
		{"unauthenticated route, signed out", signedOut, domain.ViewUnauthenticated, http.StatusOK},
		{"unauthenticated route, signed in", signedIn, domain.ViewUnauthenticated, http.StatusForbidden},
		{"unauthenticated route, loading", loading, domain.ViewUnauthenticated, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			called := false
			handler := RequireView(tc.sessions, tc.allowed)(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})

			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if called != (tc.code == http.StatusOK) {
				t.Fatalf("next called=%v for status %d", called, tc.code)
			}
		})
	}
}

func TestRequireView_LoadingSetsRetryAfter(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := RequireView(fixedSession{}, domain.ViewAuthenticated)(func(c echo.Context) error { return nil })(c)
	if err == nil {
		t.Fatal("expected error")
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After header, got %q", rec.Header().Get("Retry-After"))
	}
}
