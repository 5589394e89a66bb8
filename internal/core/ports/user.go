package ports

import (
	"context"
	"time"

	"github.com/fieldstone/crm-system/internal/core/domain"
)

// UserRepository defines persistence for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByConsultantID(ctx context.Context, consultantID string) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// CounterRepository hands out monotonically increasing sequence values,
// used for consultant and client codes.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// ListUsersFilter carries query parameters for listing users.
type ListUsersFilter struct {
	Role   string
	Status string
	Search string // partial match on name or email
	Page   int    // 1-based
	Limit  int
}

// CreateUserInput carries all data needed to create a user.
type CreateUserInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Role         string
	ConsultantID string // auto-assigned when empty
}

// UpdateUserInput patches user profile fields. Nil pointers leave the
// field untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// BulkUpdateInput applies a status and/or role change to a set of users.
type BulkUpdateInput struct {
	UserIDs []string
	Status  *string
	Role    *string
}

// UserService defines administrative user operations. ActorID identifies
// the authenticated caller; the service re-checks the actor's stored
// status before sensitive mutations.
type UserService interface {
	Create(ctx context.Context, actorID string, input CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, actorID, userID string) (*domain.User, error)
	List(ctx context.Context, actorID string, filter ListUsersFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, actorID, userID string, input UpdateUserInput) (*domain.User, error)
	UpdateRole(ctx context.Context, actorID, userID, role string) (*domain.User, error)
	ResetPassword(ctx context.Context, actorID, userID, newPassword string) error
	ToggleStatus(ctx context.Context, actorID, userID string) (*domain.User, error)
	Delete(ctx context.Context, actorID, userID string) error
	BulkUpdate(ctx context.Context, actorID string, input BulkUpdateInput) (int, error)
}
