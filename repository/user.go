package repository

import (
	"context"

	"github.com/funneldesk/backend/domain"
)

// UserRepository resolves authenticated identities and the admin role.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	IsAdmin(ctx context.Context, id string) (bool, error)
}
