package repositories

import (
	"context"

	"github.com/fintaxcl/tax_events_app/internal/core/domain"
)

// UserRepository defines persistence for application accounts.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User, passwordHash string) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	// FindUserByUsername also returns the stored password hash for
	// credential verification.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, string, error)
}
