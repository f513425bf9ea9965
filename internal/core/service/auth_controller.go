package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
	"github.com/perfilapp/perfil/internal/core/validation"
)

// AuthController implements sign-in, sign-up and sign-out.
//
// None of its operations navigate: the session notification emitted by the
// identity service is what moves the shell between screen groups.
type AuthController struct {
	identity ports.IdentityService
	records  ports.ProfileStore
	ops      map[ports.AuthOperation]*operation
	opts     options
	log      zerolog.Logger
}

var _ ports.AuthController = (*AuthController)(nil)

func NewAuthController(identity ports.IdentityService, records ports.ProfileStore, log zerolog.Logger, opts ...Option) *AuthController {
	return &AuthController{
		identity: identity,
		records:  records,
		ops: map[ports.AuthOperation]*operation{
			ports.OpSignIn:  newOperation(),
			ports.OpSignUp:  newOperation(),
			ports.OpSignOut: newOperation(),
		},
		opts: buildOptions(opts),
		log:  log,
	}
}

// Status reports the state of op.
func (c *AuthController) Status(op ports.AuthOperation) domain.OperationStatus {
	if o, ok := c.ops[op]; ok {
		return o.snapshot()
	}
	return domain.OperationStatus{State: domain.OpIdle}
}

// SignIn validates the form and signs in. Backend failures are returned as
// *domain.AuthError; nothing is retried.
func (c *AuthController) SignIn(ctx context.Context, email, password string) error {
	if err := validation.ValidateAuthForm(email, password); err != nil {
		return err
	}

	op := c.ops[ports.OpSignIn]
	if err := op.begin(); err != nil {
		return err
	}

	identity, err := c.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		mapped := mapSignInError(err)
		op.finish(mapped)
		c.log.Warn().Err(err).Str("reason", reasonOf(mapped)).Msg("sign-in failed")
		return mapped
	}

	op.finish(nil)
	c.log.Info().Str("identity_id", identity.ID).Msg("signed in")
	return nil
}

// SignUp creates the identity, sets its display name and writes the profile
// record, in that order. A failure after the identity exists is reported but
// the identity is kept.
func (c *AuthController) SignUp(ctx context.Context, in ports.RegistrationInput) (*domain.Identity, error) {
	startedAt := c.opts.now().UTC()

	age, err := validation.ValidateRegistration(in)
	if err != nil {
		return nil, err
	}

	op := c.ops[ports.OpSignUp]
	if err := op.begin(); err != nil {
		return nil, err
	}

	// 1. Create the identity.
	identity, err := c.identity.SignUpWithPassword(ctx, in.Email, in.Password)
	if err != nil {
		mapped := mapSignUpError(err)
		op.finish(mapped)
		c.log.Warn().Err(err).Str("reason", reasonOf(mapped)).Msg("sign-up failed")
		return nil, mapped
	}

	// 2. Display name.
	if err := c.identity.UpdateDisplayName(ctx, *identity, in.Name); err != nil {
		return nil, c.incompleteSignUp(op, identity, "display_name", err)
	}

	// 3. Profile record. The email is the one the identity service stored.
	record := &domain.ProfileRecord{
		UID:       identity.ID,
		Name:      in.Name,
		Email:     identity.Email,
		Age:       age,
		Specialty: in.Specialty,
		CreatedAt: startedAt,
	}
	if err := c.records.SetRecord(ctx, identity.ID, record); err != nil {
		return nil, c.incompleteSignUp(op, identity, "profile_record", err)
	}

	op.finish(nil)
	c.log.Info().Str("identity_id", identity.ID).Msg("account registered")

	out := *identity
	out.DisplayName = in.Name
	return &out, nil
}

func (c *AuthController) incompleteSignUp(op *operation, identity *domain.Identity, step string, cause error) error {
	err := authError(
		domain.ReasonUnknown,
		"error creating the account: "+backendMessage(cause),
		fmt.Errorf("%w: %s: %w", domain.ErrIncompleteRegistration, step, cause),
	)
	op.finish(err)
	c.log.Warn().
		Err(cause).
		Str("identity_id", identity.ID).
		Str("step", step).
		Msg("identity created without complete profile")
	return err
}

// SignOut asks confirm first; a declined confirmation issues no backend call.
// A nil confirm signs out directly.
func (c *AuthController) SignOut(ctx context.Context, confirm ports.ConfirmFunc) (bool, error) {
	if confirm != nil && !confirm(ctx) {
		c.log.Debug().Msg("sign-out cancelled")
		return true, nil
	}

	op := c.ops[ports.OpSignOut]
	if err := op.begin(); err != nil {
		return false, err
	}

	if err := c.identity.SignOut(ctx); err != nil {
		mapped := authError(domain.ReasonUnknown, "could not sign out: "+backendMessage(err), err)
		op.finish(mapped)
		c.log.Error().Err(err).Msg("sign-out failed")
		return false, mapped
	}

	op.finish(nil)
	c.log.Info().Msg("signed out")
	return false, nil
}

func reasonOf(err error) string {
	if ae, ok := err.(*domain.AuthError); ok {
		return string(ae.Reason)
	}
	return "unknown"
}
