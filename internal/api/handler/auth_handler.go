package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/perfilapp/perfil/internal/api/metrics"
	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

// settleTimeout bounds how long a handler waits for the session store to
// reflect a sign-in or sign-out before answering.
const settleTimeout = 2 * time.Second

// SessionReader is the read side of the session store.
type SessionReader interface {
	Snapshot() domain.SessionState
	Await(ctx context.Context, view domain.ViewState) (domain.SessionState, error)
}

// TokenSource exposes the identity service's current session token.
type TokenSource interface {
	Token() (token string, expiresAt time.Time)
}

type AuthHandler struct {
	auth     ports.AuthController
	sessions SessionReader
	tokens   TokenSource
	metrics  *metrics.Collector
}

func NewAuthHandler(auth ports.AuthController, sessions SessionReader, tokens TokenSource, m *metrics.Collector) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, tokens: tokens, metrics: m}
}

// Login signs in with email and password.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	if err := h.auth.SignIn(ctx, req.Email, req.Password); err != nil {
		h.metrics.AuthOperation(string(ports.OpSignIn), resultOf(err))
		return err
	}
	h.metrics.AuthOperation(string(ports.OpSignIn), metrics.ResultSuccess)

	return c.JSON(http.StatusOK, h.signedIn(ctx))
}

// Register creates an account, sets its display name and stores its profile.
//
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration form"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	_, err := h.auth.SignUp(ctx, ports.RegistrationInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Age:             req.Age,
		Specialty:       req.Specialty,
	})
	if err != nil {
		h.metrics.AuthOperation(string(ports.OpSignUp), resultOf(err))
		return err
	}
	h.metrics.AuthOperation(string(ports.OpSignUp), metrics.ResultSuccess)

	return c.JSON(http.StatusCreated, h.signedIn(ctx))
}

// Logout signs out once the user has confirmed.
//
// @Summary      Sign out
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      logoutRequest  true  "Confirmation"
// @Success      200   {object}  logoutResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	ctx := c.Request().Context()
	cancelled, err := h.auth.SignOut(ctx, func(context.Context) bool { return req.Confirm })
	if err != nil {
		h.metrics.AuthOperation(string(ports.OpSignOut), resultOf(err))
		return err
	}
	if cancelled {
		h.metrics.AuthOperation(string(ports.OpSignOut), metrics.ResultCancelled)
		return c.JSON(http.StatusOK, logoutResponse{Cancelled: true, Session: toSessionResponse(h.sessions.Snapshot())})
	}
	h.metrics.AuthOperation(string(ports.OpSignOut), metrics.ResultSuccess)

	state := h.settle(ctx, domain.ViewUnauthenticated)
	return c.JSON(http.StatusOK, logoutResponse{Session: toSessionResponse(state)})
}

func (h *AuthHandler) signedIn(ctx context.Context) authResponse {
	resp := authResponse{Session: toSessionResponse(h.settle(ctx, domain.ViewAuthenticated))}
	if token, expiresAt := h.tokens.Token(); token != "" {
		resp.Token = token
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

// settle waits briefly for the store to reach view; on timeout the latest
// state is returned as is.
func (h *AuthHandler) settle(ctx context.Context, view domain.ViewState) domain.SessionState {
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	state, _ := h.sessions.Await(ctx, view)
	return state
}

// resultOf classifies err for the result metric label.
func resultOf(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.As(err, &ve):
		return metrics.ResultValidation
	case errors.Is(err, domain.ErrOperationInFlight), errors.Is(err, domain.ErrReauthRequired),
		errors.Is(err, domain.ErrNotEditing):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailure
	}
}
