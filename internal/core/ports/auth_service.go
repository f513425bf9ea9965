package ports

import (
	"context"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// RegistrationInput carries the raw registration form.
type RegistrationInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Age             string
	Specialty       string
}

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(ctx context.Context) bool

// AuthOperation names the operations tracked by AuthController.
type AuthOperation string

const (
	OpSignIn  AuthOperation = "sign_in"
	OpSignUp  AuthOperation = "sign_up"
	OpSignOut AuthOperation = "sign_out"
)

// AuthController drives sign-in, sign-up and sign-out.
type AuthController interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, input RegistrationInput) (*domain.Identity, error)
	// SignOut returns cancelled=true when confirm declined; no backend call is made then.
	SignOut(ctx context.Context, confirm ConfirmFunc) (cancelled bool, err error)
	Status(op AuthOperation) domain.OperationStatus
}
