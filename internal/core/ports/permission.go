package ports

import (
	"context"

	"github.com/fieldstone/crm-system/internal/core/domain"
)

// PermissionRepository defines persistence for page permissions.
type PermissionRepository interface {
	Upsert(ctx context.Context, p *domain.PagePermission) (*domain.PagePermission, error)
	FindByPage(ctx context.Context, pageName string) (*domain.PagePermission, error)
	List(ctx context.Context) ([]*domain.PagePermission, error)
}

// PermissionService defines page-permission use cases. Reads are open to
// any authenticated user; writes require Admin.
type PermissionService interface {
	List(ctx context.Context) ([]*domain.PagePermission, error)
	Upsert(ctx context.Context, actor *domain.User, pageName string, perms map[string]bool) (*domain.PagePermission, error)
}
