package service

import (
	"errors"

	"github.com/perfilapp/perfil/internal/core/domain"
)

func backendCode(err error) string {
	var be *domain.BackendError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func backendMessage(err error) string {
	var be *domain.BackendError
	if errors.As(err, &be) {
		if be.Message != "" {
			return be.Message
		}
		return be.Code
	}
	return err.Error()
}

func authError(reason domain.AuthReason, msg string, err error) *domain.AuthError {
	return &domain.AuthError{Reason: reason, Message: msg, Err: err}
}

func mapSignInError(err error) error {
	switch backendCode(err) {
	case domain.CodeUserNotFound:
		return authError(domain.ReasonUserNotFound, "user not found. Do you need to register?", err)
	case domain.CodeWrongPassword:
		return authError(domain.ReasonWrongPassword, "incorrect password", err)
	case domain.CodeInvalidEmail:
		return authError(domain.ReasonInvalidEmail, "invalid email", err)
	case domain.CodeInvalidCredential:
		return authError(domain.ReasonInvalidCredential, "invalid credentials. Check your email and password", err)
	case domain.CodeTooManyRequests:
		return authError(domain.ReasonTooManyAttempts, "too many failed attempts. Try again later", err)
	case domain.CodeNetworkFailed:
		return authError(domain.ReasonNetworkFailure, "connection error. Check your internet connection", err)
	default:
		return authError(domain.ReasonUnknown, "error: "+backendMessage(err), err)
	}
}

func mapSignUpError(err error) error {
	switch backendCode(err) {
	case domain.CodeEmailAlreadyInUse:
		return authError(domain.ReasonEmailInUse, "this email is already registered", err)
	case domain.CodeInvalidEmail:
		return authError(domain.ReasonInvalidEmail, "invalid email", err)
	case domain.CodeWeakPassword:
		return authError(domain.ReasonWeakPassword, "the password is too weak", err)
	case domain.CodeNetworkFailed:
		return authError(domain.ReasonNetworkFailure, "connection error. Check your internet connection", err)
	default:
		return authError(domain.ReasonUnknown, "error: "+backendMessage(err), err)
	}
}

func mapProfileError(err error) error {
	switch backendCode(err) {
	case domain.CodeEmailAlreadyInUse:
		return authError(domain.ReasonEmailInUse, "this email is already in use", err)
	case domain.CodeInvalidEmail:
		return authError(domain.ReasonInvalidEmail, "invalid email", err)
	case domain.CodeRequiresRecentLogin:
		return authError(domain.ReasonRequiresRecentLogin, "you need to sign in again to make this change", err)
	default:
		return authError(domain.ReasonUnknown, backendMessage(err), err)
	}
}
