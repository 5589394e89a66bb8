package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

const consultantCodeCounter = "consultant_code"

// ConsultantService implements consultant CRUD with role gating.
type ConsultantService struct {
	repo     ports.ConsultantRepository
	counters ports.CounterRepository
	logger   zerolog.Logger
}

func NewConsultantService(repo ports.ConsultantRepository, counters ports.CounterRepository, logger zerolog.Logger) *ConsultantService {
	return &ConsultantService{repo: repo, counters: counters, logger: logger}
}

func (s *ConsultantService) Create(ctx context.Context, actor *domain.User, input ports.ConsultantInput) (*domain.Consultant, error) {
	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", domain.ErrValidation)
	}

	seq, err := s.counters.Next(ctx, consultantCodeCounter)
	if err != nil {
		return nil, fmt.Errorf("assign consultant code: %w", err)
	}

	now := time.Now().UTC()
	c := &domain.Consultant{
		Code:      fmt.Sprintf("CON-%06d", seq),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		City:      input.City,
		State:     input.State,
		ZipCode:   input.ZipCode,
		Status:    input.Status,
		HireDate:  now,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Status == "" {
		c.Status = domain.StatusActive
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("code", created.Code).Str("actor", actor.ID).Msg("consultant created")
	return created, nil
}

func (s *ConsultantService) Get(ctx context.Context, id string) (*domain.Consultant, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return c, nil
	}
	return s.repo.FindByCode(ctx, id)
}

func (s *ConsultantService) List(ctx context.Context, filter ports.ListConsultantsFilter) ([]*domain.Consultant, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

func (s *ConsultantService) Update(ctx context.Context, actor *domain.User, id string, input ports.ConsultantInput) (*domain.Consultant, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != "" {
		c.FirstName = input.FirstName
	}
	if input.LastName != "" {
		c.LastName = input.LastName
	}
	if input.Email != "" {
		c.Email = input.Email
	}
	if input.Phone != "" {
		c.Phone = input.Phone
	}
	if input.Address != "" {
		c.Address = input.Address
	}
	if input.City != "" {
		c.City = input.City
	}
	if input.State != "" {
		c.State = input.State
	}
	if input.ZipCode != "" {
		c.ZipCode = input.ZipCode
	}
	if input.Status != "" {
		c.Status = input.Status
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ConsultantService) ToggleStatus(ctx context.Context, actor *domain.User, id string) (*domain.Consultant, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.StatusActive {
		c.Status = domain.StatusInactive
	} else {
		c.Status = domain.StatusActive
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete is restricted to Admin regardless of the route-level gate.
func (s *ConsultantService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if !actor.IsAdmin {
		return domain.ErrPermission
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	s.logger.Info().Str("code", c.Code).Str("actor", actor.ID).Msg("consultant deleted")
	return nil
}

var _ ports.ConsultantService = (*ConsultantService)(nil)
