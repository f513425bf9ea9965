package service

import (
	"context"
	"sync"

	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
)

// ProfileEditor owns the profile screen's form state and edit mode.
type ProfileEditor struct {
	svc ports.ProfileService

	mu      sync.Mutex
	form    domain.ProfileForm
	editing bool
}

var _ ports.ProfileEditor = (*ProfileEditor)(nil)

func NewProfileEditor(svc ports.ProfileService) *ProfileEditor {
	return &ProfileEditor{svc: svc}
}

// Load replaces the form with the stored profile.
func (e *ProfileEditor) Load(ctx context.Context) (domain.ProfileForm, error) {
	form, err := e.svc.LoadForm(ctx)
	if err != nil {
		return domain.ProfileForm{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = *form
	return e.form, nil
}

// State returns the form and whether edit mode is on.
func (e *ProfileEditor) State() (domain.ProfileForm, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form, e.editing
}

func (e *ProfileEditor) BeginEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing = true
}

// Cancel leaves edit mode, clears the password inputs and reloads the record.
func (e *ProfileEditor) Cancel(ctx context.Context) (domain.ProfileForm, error) {
	e.mu.Lock()
	e.editing = false
	e.form.ClearPasswords()
	e.mu.Unlock()

	return e.Load(ctx)
}

// Save submits form. It is only accepted in edit mode. On success the
// password inputs are cleared and edit mode ends; on failure the submitted
// form is kept for correction.
func (e *ProfileEditor) Save(ctx context.Context, form domain.ProfileForm) (*ports.ProfileUpdateResult, error) {
	e.mu.Lock()
	if !e.editing {
		e.mu.Unlock()
		return nil, domain.ErrNotEditing
	}
	e.form = form
	e.mu.Unlock()

	result, err := e.svc.UpdateProfile(ctx, ports.ProfileUpdateInput{
		Name:            form.Name,
		Email:           form.Email,
		Age:             form.Age,
		Specialty:       form.Specialty,
		CurrentPassword: form.CurrentPassword,
		NewPassword:     form.NewPassword,
	})
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.form.ClearPasswords()
	e.editing = false
	e.mu.Unlock()
	return result, nil
}

// Reset discards the form, as when the screen is left on sign-out.
func (e *ProfileEditor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = domain.ProfileForm{}
	e.editing = false
}
