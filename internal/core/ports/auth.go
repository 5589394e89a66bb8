package ports

import (
	"context"

	"github.com/fieldstone/crm-system/internal/core/domain"
)

// AuthService defines registration and login.
type AuthService interface {
	Register(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
