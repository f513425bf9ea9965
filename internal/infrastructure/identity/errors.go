package identity

import (
	"context"
	"errors"

	"github.com/perfilapp/perfil/internal/core/domain"
)

var (
	errUserNotFound        = domain.NewBackendError(domain.CodeUserNotFound, "there is no user record corresponding to this identifier", nil)
	errWrongPassword       = domain.NewBackendError(domain.CodeWrongPassword, "the password is invalid", nil)
	errInvalidEmail        = domain.NewBackendError(domain.CodeInvalidEmail, "the email address is badly formatted", nil)
	errInvalidCredential   = domain.NewBackendError(domain.CodeInvalidCredential, "the supplied credential does not match the signed-in user", nil)
	errTooManyRequests     = domain.NewBackendError(domain.CodeTooManyRequests, "access to this account has been temporarily disabled due to many failed login attempts", nil)
	errEmailInUse          = domain.NewBackendError(domain.CodeEmailAlreadyInUse, "the email address is already in use by another account", nil)
	errWeakPassword        = domain.NewBackendError(domain.CodeWeakPassword, "password should be at least 6 characters", nil)
	errRequiresRecentLogin = domain.NewBackendError(domain.CodeRequiresRecentLogin, "this operation is sensitive and requires recent authentication", nil)
	errNoCurrentUser       = domain.NewBackendError(domain.CodeNoCurrentUser, "no user is currently signed in", nil)
)

// classify turns a repository or limiter failure into a BackendError.
// Errors already classified by the store pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var be *domain.BackendError
	switch {
	case errors.As(err, &be):
		return err
	case errors.Is(err, domain.ErrAccountNotFound):
		return errUserNotFound
	case errors.Is(err, domain.ErrAccountExists):
		return errEmailInUse
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return domain.NewBackendError(domain.CodeNetworkFailed, "a network error has occurred", err)
	default:
		return domain.NewBackendError(domain.CodeInternal, "an internal error has occurred", err)
	}
}
