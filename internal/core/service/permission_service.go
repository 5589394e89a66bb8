package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

// PermissionService manages page-level visibility flags.
type PermissionService struct {
	repo   ports.PermissionRepository
	logger zerolog.Logger
}

func NewPermissionService(repo ports.PermissionRepository, logger zerolog.Logger) *PermissionService {
	return &PermissionService{repo: repo, logger: logger}
}

func (s *PermissionService) List(ctx context.Context) ([]*domain.PagePermission, error) {
	return s.repo.List(ctx)
}

func (s *PermissionService) Upsert(ctx context.Context, actor *domain.User, pageName string, perms map[string]bool) (*domain.PagePermission, error) {
	if !actor.IsAdmin {
		return nil, domain.ErrPermission
	}
	if pageName == "" {
		return nil, fmt.Errorf("%w: page name is required", domain.ErrValidation)
	}

	p := &domain.PagePermission{
		PageName:        pageName,
		RolePermissions: perms,
		UpdatedBy:       actor.ID,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := p.ValidateRoleKeys(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("page", pageName).Str("actor", actor.ID).Msg("page permissions updated")
	return updated, nil
}

var _ ports.PermissionService = (*PermissionService)(nil)
