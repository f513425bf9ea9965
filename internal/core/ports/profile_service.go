package ports

import (
	"context"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// ProfileUpdateInput carries the proposed profile values and optional passwords.
type ProfileUpdateInput struct {
	Name            string
	Email           string
	Age             string
	Specialty       string
	CurrentPassword string
	NewPassword     string
}

// ProfileUpdateResult is returned after a fully committed profile update.
type ProfileUpdateResult struct {
	Fields       domain.ProfileFields
	EmailChanged bool
	Reauthed     bool
	Message      string
}

// HomeView is what the home screen shows. Record is nil when none is stored.
type HomeView struct {
	Identity domain.Identity
	Record   *domain.ProfileRecord
}

// ProfileService loads and updates the signed-in identity's profile.
type ProfileService interface {
	Home(ctx context.Context) (*HomeView, error)
	LoadForm(ctx context.Context) (*domain.ProfileForm, error)
	UpdateProfile(ctx context.Context, input ProfileUpdateInput) (*ProfileUpdateResult, error)
	Status() domain.OperationStatus
}

// ProfileEditor holds the profile screen's form and edit mode.
type ProfileEditor interface {
	Load(ctx context.Context) (domain.ProfileForm, error)
	State() (form domain.ProfileForm, editing bool)
	BeginEdit()
	Cancel(ctx context.Context) (domain.ProfileForm, error)
	Save(ctx context.Context, form domain.ProfileForm) (*ProfileUpdateResult, error)
	Reset()
}
