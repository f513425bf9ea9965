package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Field  string `json:"field,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps validation, auth and session errors to deterministic status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "reason": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, body)
	}
}

var reasonStatus = map[domain.AuthReason]int{
	domain.ReasonUserNotFound:        http.StatusNotFound,
	domain.ReasonWrongPassword:       http.StatusUnauthorized,
	domain.ReasonInvalidCredential:   http.StatusUnauthorized,
	domain.ReasonInvalidEmail:        http.StatusUnprocessableEntity,
	domain.ReasonWeakPassword:        http.StatusUnprocessableEntity,
	domain.ReasonTooManyAttempts:     http.StatusTooManyRequests,
	domain.ReasonNetworkFailure:      http.StatusServiceUnavailable,
	domain.ReasonEmailInUse:          http.StatusConflict,
	domain.ReasonRequiresRecentLogin: http.StatusForbidden,
	domain.ReasonUnknown:             http.StatusInternalServerError,
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:  ve.Error(),
			Reason: string(ve.Kind),
			Field:  ve.Field,
		}
	}

	switch {
	case errors.Is(err, domain.ErrReauthRequired):
		return http.StatusForbidden, errorResponse{Error: "current password is required for this change", Reason: "reauth_required"}
	case errors.Is(err, domain.ErrReauthFailed):
		return http.StatusUnauthorized, errorResponse{Error: "current password is incorrect", Reason: "reauth_failed"}
	case errors.Is(err, domain.ErrOperationInFlight):
		return http.StatusConflict, errorResponse{Error: "operation already in progress", Reason: "in_flight"}
	case errors.Is(err, domain.ErrNotEditing):
		return http.StatusConflict, errorResponse{Error: "profile is not in edit mode", Reason: "not_editing"}
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "not signed in"}
	}

	// Auth errors carry the user-facing message.
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		code, ok := reasonStatus[ae.Reason]
		if !ok {
			code = http.StatusInternalServerError
		}
		if code >= http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("reason", string(ae.Reason)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("auth operation failed")
		}
		return code, errorResponse{Error: ae.Error(), Reason: string(ae.Reason)}
	}

	if errors.Is(err, domain.ErrRecordNotFound) {
		return http.StatusNotFound, errorResponse{Error: "profile not found"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
