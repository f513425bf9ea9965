package ports

import (
	"context"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// SessionListener receives the current identity, or nil when signed out.
type SessionListener func(identity *domain.Identity)

// SessionSource is the subscribable half of the identity service.
type SessionSource interface {
	// OnSessionChange registers listener and returns its unsubscribe handle.
	// The listener is invoked with the current state right after attaching.
	OnSessionChange(listener SessionListener) (unsubscribe func())
}

// IdentityService is the capability set consumed from the identity backend.
// Failures are reported as *domain.BackendError.
type IdentityService interface {
	SessionSource

	SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error)
	SignUpWithPassword(ctx context.Context, email, password string) (*domain.Identity, error)
	SignOut(ctx context.Context) error

	// CurrentIdentity is the backend's live view of the signed-in identity,
	// reflecting profile-field updates that do not emit notifications.
	CurrentIdentity() *domain.Identity

	UpdateDisplayName(ctx context.Context, identity domain.Identity, name string) error
	UpdateEmail(ctx context.Context, identity domain.Identity, email string) error
	UpdatePassword(ctx context.Context, identity domain.Identity, password string) error
	Reauthenticate(ctx context.Context, identity domain.Identity, email, currentPassword string) error
}
