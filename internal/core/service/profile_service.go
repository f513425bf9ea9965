package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
	"github.com/perfilapp/perfil/internal/core/validation"
)

const profileUpdatedMessage = "profile updated successfully"

// ProfileService reads and edits the signed-in identity's profile.
type ProfileService struct {
	identity ports.IdentityService
	records  ports.ProfileStore
	op       *operation
	opts     options
	log      zerolog.Logger
}

var _ ports.ProfileService = (*ProfileService)(nil)

func NewProfileService(identity ports.IdentityService, records ports.ProfileStore, log zerolog.Logger, opts ...Option) *ProfileService {
	return &ProfileService{
		identity: identity,
		records:  records,
		op:       newOperation(),
		opts:     buildOptions(opts),
		log:      log,
	}
}

// Status reports the state of the profile update operation.
func (s *ProfileService) Status() domain.OperationStatus {
	return s.op.snapshot()
}

func (s *ProfileService) current() (*domain.Identity, error) {
	identity := s.identity.CurrentIdentity()
	if identity == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return identity, nil
}

// Home returns the identity and its stored record, if any.
func (s *ProfileService) Home(ctx context.Context) (*ports.HomeView, error) {
	identity, err := s.current()
	if err != nil {
		return nil, err
	}

	record, err := s.records.GetRecord(ctx, identity.ID)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		record = nil
	case err != nil:
		return nil, fmt.Errorf("load home: %w", err)
	}
	return &ports.HomeView{Identity: *identity, Record: record}, nil
}

// LoadForm fills the profile form from the stored record. Without a record,
// the identity's display name and email are used.
func (s *ProfileService) LoadForm(ctx context.Context) (*domain.ProfileForm, error) {
	identity, err := s.current()
	if err != nil {
		return nil, err
	}

	record, err := s.records.GetRecord(ctx, identity.ID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return &domain.ProfileForm{Name: identity.DisplayName, Email: identity.Email}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	form := &domain.ProfileForm{
		Name:      record.Name,
		Email:     record.Email,
		Specialty: record.Specialty,
	}
	if form.Email == "" {
		form.Email = identity.Email
	}
	if record.Age != 0 {
		form.Age = strconv.Itoa(record.Age)
	}
	return form, nil
}

// UpdateProfile runs the profile update transaction:
//
//  1. validate fields (no backend calls on failure)
//  2. re-authenticate when the email changes or a new password is given
//  3. display name → email → password → record, stopping at the first failure
//
// Steps already committed when a later one fails stay committed.
func (s *ProfileService) UpdateProfile(ctx context.Context, in ports.ProfileUpdateInput) (*ports.ProfileUpdateResult, error) {
	age, err := validation.ValidateProfile(in.Name, in.Email, in.Age, in.Specialty)
	if err != nil {
		return nil, err
	}

	identity, err := s.current()
	if err != nil {
		return nil, err
	}

	if err := s.op.begin(); err != nil {
		return nil, err
	}

	result, err := s.update(ctx, *identity, in, age)
	s.op.finish(err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ProfileService) update(ctx context.Context, identity domain.Identity, in ports.ProfileUpdateInput, age int) (*ports.ProfileUpdateResult, error) {
	emailChanged := domain.NormalizeEmail(in.Email) != domain.NormalizeEmail(identity.Email)
	newPassword := in.NewPassword != ""
	log := s.log.With().Str("identity_id", identity.ID).Logger()

	result := &ports.ProfileUpdateResult{EmailChanged: emailChanged}

	if emailChanged || newPassword {
		if in.CurrentPassword == "" {
			return nil, domain.ErrReauthRequired
		}
		if err := s.identity.Reauthenticate(ctx, identity, identity.Email, in.CurrentPassword); err != nil {
			log.Warn().Err(err).Msg("re-authentication failed")
			return nil, fmt.Errorf("%w: %w", domain.ErrReauthFailed, err)
		}
		result.Reauthed = true
	}

	var committed []string
	fail := func(step string, err error) error {
		ev := log.Warn().Err(err).Str("step", step)
		if len(committed) > 0 {
			ev = ev.Strs("committed", committed)
		}
		ev.Msg("profile update stopped")
		return err
	}

	if err := s.identity.UpdateDisplayName(ctx, identity, in.Name); err != nil {
		return nil, fail("display_name", mapProfileError(err))
	}
	committed = append(committed, "display_name")

	if emailChanged {
		if err := s.identity.UpdateEmail(ctx, identity, in.Email); err != nil {
			return nil, fail("email", mapProfileError(err))
		}
		committed = append(committed, "email")
	}

	if newPassword {
		if err := validation.ValidateNewPassword(in.NewPassword); err != nil {
			return nil, fail("password", err)
		}
		if err := s.identity.UpdatePassword(ctx, identity, in.NewPassword); err != nil {
			return nil, fail("password", mapProfileError(err))
		}
		committed = append(committed, "password")
	}

	fields := domain.ProfileFields{
		Name:      in.Name,
		Email:     s.recordEmail(identity, in.Email, emailChanged),
		Age:       age,
		Specialty: in.Specialty,
		UpdatedAt: s.opts.now().UTC(),
	}
	if err := s.records.UpdateRecord(ctx, identity.ID, fields); err != nil {
		return nil, fail("profile_record", mapProfileError(err))
	}

	log.Info().Bool("email_changed", emailChanged).Bool("password_changed", newPassword).Msg("profile updated")

	result.Fields = fields
	result.Message = profileUpdatedMessage
	return result, nil
}

// recordEmail is the email written to the profile record: the identity
// service's stored form, so the record keeps tracking Identity.Email.
func (s *ProfileService) recordEmail(identity domain.Identity, proposed string, changed bool) string {
	if !changed {
		return identity.Email
	}
	if current := s.identity.CurrentIdentity(); current != nil && current.ID == identity.ID {
		return current.Email
	}
	return domain.NormalizeEmail(proposed)
}
