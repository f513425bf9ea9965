package ports

import (
	"context"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// ProfileStore is the document store capability set for the usuarios collection.
type ProfileStore interface {
	// GetRecord returns domain.ErrRecordNotFound when no record exists.
	GetRecord(ctx context.Context, identityID string) (*domain.ProfileRecord, error)
	// SetRecord fully replaces the record. Used at registration.
	SetRecord(ctx context.Context, identityID string, record *domain.ProfileRecord) error
	// UpdateRecord merges fields into an existing record. Used at profile edit.
	UpdateRecord(ctx context.Context, identityID string, fields domain.ProfileFields) error
}
