package ports

import (
	"context"

	"github.com/fieldstone/crm-system/internal/core/domain"
)

// ConsultantRepository defines persistence for consultants.
type ConsultantRepository interface {
	Create(ctx context.Context, c *domain.Consultant) (*domain.Consultant, error)
	FindByID(ctx context.Context, id string) (*domain.Consultant, error)
	FindByCode(ctx context.Context, code string) (*domain.Consultant, error)
	List(ctx context.Context, filter ListConsultantsFilter) ([]*domain.Consultant, int64, error)
	Update(ctx context.Context, c *domain.Consultant) error
	Delete(ctx context.Context, id string) error
}

// ListConsultantsFilter carries query parameters for listing consultants.
type ListConsultantsFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// ConsultantInput carries consultant profile fields for create and update.
type ConsultantInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
	Status    string
}

// ConsultantService defines consultant use cases.
type ConsultantService interface {
	Create(ctx context.Context, actor *domain.User, input ConsultantInput) (*domain.Consultant, error)
	Get(ctx context.Context, id string) (*domain.Consultant, error)
	List(ctx context.Context, filter ListConsultantsFilter) ([]*domain.Consultant, int64, error)
	Update(ctx context.Context, actor *domain.User, id string, input ConsultantInput) (*domain.Consultant, error)
	ToggleStatus(ctx context.Context, actor *domain.User, id string) (*domain.Consultant, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}
