package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/perfilapp/perfil/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantReason string
	}{
		{"echo error", echo.NewHTTPError(http.StatusServiceUnavailable, "session is loading"), 503, "session is loading", ""},
		{"validation", domain.ErrPasswordMismatch, 422, "passwords do not match", "password_mismatch"},
		{"missing field", &domain.ValidationError{Kind: domain.KindMissingField, Field: "email"}, 422, "email is required", "missing_field"},
		{"reauth required", domain.ErrReauthRequired, 403, "current password is required for this change", "reauth_required"},
		{"reauth failed", fmt.Errorf("update: %w", domain.ErrReauthFailed), 401, "current password is incorrect", "reauth_failed"},
		{"in flight", domain.ErrOperationInFlight, 409, "operation already in progress", "in_flight"},
		{"not editing", domain.ErrNotEditing, 409, "profile is not in edit mode", "not_editing"},
		{"not signed in", domain.ErrNotAuthenticated, 401, "not signed in", ""},
		{"user not found", &domain.AuthError{Reason: domain.ReasonUserNotFound, Message: "Usuario no encontrado"}, 404, "Usuario no encontrado", "user_not_found"},
		{"wrong password", domain.ErrWrongPassword, 401, "wrong_password", "wrong_password"},
		{"too many attempts", domain.ErrTooManyAttempts, 429, "too_many_attempts", "too_many_attempts"},
		{"network", domain.ErrNetworkFailure, 503, "network_failure", "network_failure"},
		{"email in use", domain.ErrEmailInUse, 409, "email_in_use", "email_in_use"},
		{"weak password", domain.ErrWeakPassword, 422, "weak_password", "weak_password"},
		{"recent login", domain.ErrRequiresRecentLogin, 403, "requires_recent_login", "requires_recent_login"},
		{"unknown auth", &domain.AuthError{Reason: domain.ReasonUnknown, Message: "Error: socket closed"}, 500, "Error: socket closed", "unknown"},
		{"record missing", fmt.Errorf("get: %w", domain.ErrRecordNotFound), 404, "profile not found", ""},
		{"unexpected", errors.New("db exploded"), 500, "internal server error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tt.wantError || body.Reason != tt.wantReason {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = c.String(http.StatusOK, "done")
	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was modified: %d %q", rec.Code, rec.Body.String())
	}
}
