package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountExists          = errors.New("account already exists")
	ErrAccountNotFound        = errors.New("account not found")
	ErrRecordNotFound         = errors.New("profile record not found")
	ErrNotAuthenticated       = errors.New("no authenticated identity")
	ErrOperationInFlight      = errors.New("operation already in progress")
	ErrNotEditing             = errors.New("profile is not in edit mode")
	ErrReauthRequired         = errors.New("current password is required to change email or password")
	ErrReauthFailed           = errors.New("current password is incorrect")
	ErrIncompleteRegistration = errors.New("account created but profile was not saved")
)

// ValidationKind identifies which local validation rule failed.
type ValidationKind string

const (
	KindMissingField     ValidationKind = "missing_field"
	KindPasswordTooShort ValidationKind = "password_too_short"
	KindPasswordMismatch ValidationKind = "password_mismatch"
	KindInvalidEmail     ValidationKind = "invalid_email"
	KindInvalidAge       ValidationKind = "invalid_age"
)

// ValidationError is raised before any backend call is attempted.
type ValidationError struct {
	Kind  ValidationKind
	Field string
}

var (
	ErrMissingField     = &ValidationError{Kind: KindMissingField}
	ErrPasswordTooShort = &ValidationError{Kind: KindPasswordTooShort}
	ErrPasswordMismatch = &ValidationError{Kind: KindPasswordMismatch}
	ErrInvalidEmail     = &ValidationError{Kind: KindInvalidEmail}
	ErrInvalidAge       = &ValidationError{Kind: KindInvalidAge}
)

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingField:
		if e.Field != "" {
			return e.Field + " is required"
		}
		return "please fill in all fields"
	case KindPasswordTooShort:
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	case KindPasswordMismatch:
		return "passwords do not match"
	case KindInvalidEmail:
		return "please enter a valid email"
	case KindInvalidAge:
		return fmt.Sprintf("please enter a valid age (%d-%d)", MinAge, MaxAge)
	default:
		return "invalid input"
	}
}

// Is matches on Kind, and on Field when the target names one.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// AuthReason is the user-facing category a backend failure is mapped to.
type AuthReason string

const (
	ReasonUserNotFound        AuthReason = "user_not_found"
	ReasonWrongPassword       AuthReason = "wrong_password"
	ReasonInvalidEmail        AuthReason = "invalid_email"
	ReasonInvalidCredential   AuthReason = "invalid_credential"
	ReasonTooManyAttempts     AuthReason = "too_many_attempts"
	ReasonNetworkFailure      AuthReason = "network_failure"
	ReasonEmailInUse          AuthReason = "email_in_use"
	ReasonWeakPassword        AuthReason = "weak_password"
	ReasonRequiresRecentLogin AuthReason = "requires_recent_login"
	ReasonUnknown             AuthReason = "unknown"
)

// AuthError is a backend failure mapped to an AuthReason. Message is what the
// user sees; Err keeps the backend cause.
type AuthError struct {
	Reason  AuthReason
	Message string
	Err     error
}

var (
	ErrUserNotFound        = &AuthError{Reason: ReasonUserNotFound}
	ErrWrongPassword       = &AuthError{Reason: ReasonWrongPassword}
	ErrInvalidCredential   = &AuthError{Reason: ReasonInvalidCredential}
	ErrTooManyAttempts     = &AuthError{Reason: ReasonTooManyAttempts}
	ErrNetworkFailure      = &AuthError{Reason: ReasonNetworkFailure}
	ErrEmailInUse          = &AuthError{Reason: ReasonEmailInUse}
	ErrWeakPassword        = &AuthError{Reason: ReasonWeakPassword}
	ErrRequiresRecentLogin = &AuthError{Reason: ReasonRequiresRecentLogin}
	ErrUnknownAuth         = &AuthError{Reason: ReasonUnknown}
)

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Reason == e.Reason
}

// Identity service error codes.
const (
	CodeUserNotFound        = "auth/user-not-found"
	CodeWrongPassword       = "auth/wrong-password"
	CodeInvalidEmail        = "auth/invalid-email"
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeTooManyRequests     = "auth/too-many-requests"
	CodeNetworkFailed       = "auth/network-request-failed"
	CodeEmailAlreadyInUse   = "auth/email-already-in-use"
	CodeWeakPassword        = "auth/weak-password"
	CodeRequiresRecentLogin = "auth/requires-recent-login"
	CodeNoCurrentUser       = "auth/no-current-user"
	CodeInternal            = "auth/internal-error"
)

// BackendError is what the identity service and document store report.
type BackendError struct {
	Code    string
	Message string
	Err     error
}

// NewBackendError builds a BackendError wrapping cause (which may be nil).
func NewBackendError(code, message string, cause error) *BackendError {
	return &BackendError{Code: code, Message: message, Err: cause}
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *BackendError) Unwrap() error { return e.Err }
