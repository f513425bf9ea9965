package ports

import (
	"context"

	"github.com/perfilapp/perfil/internal/core/domain"
)

// AccountRepository defines credential persistence for the identity service.
type AccountRepository interface {
	// Create returns domain.ErrAccountExists when the email is taken.
	Create(ctx context.Context, account *domain.Account) error
	// FindByEmail and FindByID return domain.ErrAccountNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	UpdateDisplayName(ctx context.Context, id, name string) error
	// UpdateEmail returns domain.ErrAccountExists when the email is taken.
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
