package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

// UserService implements administrative user operations with role-hierarchy
// authorization and self-action restrictions.
type UserService struct {
	repo       ports.UserRepository
	counters   ports.CounterRepository
	bcryptCost int
	logger     zerolog.Logger
}

func NewUserService(repo ports.UserRepository, counters ports.CounterRepository, bcryptCost int, logger zerolog.Logger) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, counters: counters, bcryptCost: bcryptCost, logger: logger}
}

// requireActor re-fetches the actor and re-runs the status validation
// immediately before a sensitive operation, so a deactivation that happened
// mid-session takes effect on the next call.
func (s *UserService) requireActor(ctx context.Context, actorID string) (*domain.User, error) {
	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if v := domain.ValidateStatus(actor); !v.IsValid {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserInactive, v.Reason)
	}
	return actor, nil
}

func (s *UserService) Create(ctx context.Context, actorID string, input ports.CreateUserInput) (*domain.User, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !domain.CanAssignRole(actor.Role, input.Role) {
		return nil, fmt.Errorf("%w: cannot create a user with role %q", domain.ErrPermission, input.Role)
	}

	user, err := buildUser(ctx, s.counters, input, actor.ID, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", created.ID).Str("created_by", actor.ID).Msg("user created")
	return created, nil
}

func (s *UserService) Get(ctx context.Context, actorID, userID string) (*domain.User, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Self-view is always allowed; otherwise rank must cover the target.
	if actor.ID != target.ID && !domain.HasPermission(actor.Role, target.Role) {
		return nil, domain.ErrPermission
	}
	return target, nil
}

func (s *UserService) List(ctx context.Context, actorID string, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	if _, err := s.requireActor(ctx, actorID); err != nil {
		return nil, 0, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

func (s *UserService) Update(ctx context.Context, actorID, userID string, input ports.UpdateUserInput) (*domain.User, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actor.ID != target.ID && !domain.HasPermission(actor.Role, target.Role) {
		return nil, domain.ErrPermission
	}

	if input.FirstName != nil {
		target.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		target.LastName = *input.LastName
	}
	if input.Email != nil {
		target.Email = *input.Email
	}
	if err := s.repo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// UpdateRole changes the target user's role. The actor's rank must cover
// both the target's current role and the new role; only an Admin may grant
// or revoke Admin; acting on one's own role is rejected outright.
func (s *UserService) UpdateRole(ctx context.Context, actorID, userID, role string) (*domain.User, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.ID == userID {
		return nil, fmt.Errorf("%w: cannot change own role", domain.ErrSelfAction)
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	target, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !domain.CanAssignRole(actor.Role, target.Role) || !domain.CanAssignRole(actor.Role, role) {
		return nil, fmt.Errorf("%w: cannot assign role %q", domain.ErrPermission, role)
	}

	target.SetRole(role)
	if err := s.repo.Update(ctx, target); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", target.ID).Str("role", target.Role).Str("actor", actor.ID).Msg("role updated")
	return target, nil
}

func (s *UserService) ResetPassword(ctx context.Context, actorID, userID, newPassword string) error {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}
	target, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if actor.ID != target.ID && !domain.HasPermission(actor.Role, target.Role) {
		return domain.ErrPermission
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return err
	}
	target.PasswordHash = string(hash)
	return s.repo.Update(ctx, target)
}

// ToggleStatus flips the user-level status between Active and Inactive.
// Deactivating one's own account is rejected.
func (s *UserService) ToggleStatus(ctx context.Context, actorID, userID string) (*domain.User, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.ID == userID {
		return nil, fmt.Errorf("%w: cannot deactivate own account", domain.ErrSelfAction)
	}
	target, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !domain.HasPermission(actor.Role, target.Role) {
		return nil, domain.ErrPermission
	}

	if target.Status == domain.StatusActive {
		target.Status = domain.StatusInactive
	} else {
		target.Status = domain.StatusActive
	}
	if err := s.repo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *UserService) Delete(ctx context.Context, actorID, userID string) error {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.ID == userID {
		return fmt.Errorf("%w: cannot delete own account", domain.ErrSelfAction)
	}
	target, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !domain.HasPermission(actor.Role, target.Role) {
		return domain.ErrPermission
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Str("actor", actor.ID).Msg("user deleted")
	return nil
}

// BulkUpdate applies a status and/or role change to a set of users. Each
// target is checked individually; the first authorization failure aborts
// the whole batch before any write.
func (s *UserService) BulkUpdate(ctx context.Context, actorID string, input ports.BulkUpdateInput) (int, error) {
	actor, err := s.requireActor(ctx, actorID)
	if err != nil {
		return 0, err
	}
	if len(input.UserIDs) == 0 || (input.Status == nil && input.Role == nil) {
		return 0, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}
	if input.Status != nil && *input.Status != domain.StatusActive && *input.Status != domain.StatusInactive {
		return 0, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, *input.Status)
	}
	if input.Role != nil && !domain.ValidRole(*input.Role) {
		return 0, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *input.Role)
	}

	targets := make([]*domain.User, 0, len(input.UserIDs))
	for _, id := range input.UserIDs {
		if id == actor.ID {
			return 0, fmt.Errorf("%w: bulk update includes own account", domain.ErrSelfAction)
		}
		target, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if !domain.HasPermission(actor.Role, target.Role) {
			return 0, domain.ErrPermission
		}
		if input.Role != nil && !domain.CanAssignRole(actor.Role, *input.Role) {
			return 0, fmt.Errorf("%w: cannot assign role %q", domain.ErrPermission, *input.Role)
		}
		targets = append(targets, target)
	}

	updated := 0
	for _, target := range targets {
		if input.Status != nil {
			target.Status = *input.Status
		}
		if input.Role != nil {
			target.SetRole(*input.Role)
		}
		if err := s.repo.Update(ctx, target); err != nil {
			return updated, err
		}
		updated++
	}
	s.logger.Info().Int("count", updated).Str("actor", actor.ID).Msg("bulk user update")
	return updated, nil
}

var _ ports.UserService = (*UserService)(nil)
