package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldstone/crm-system/internal/core/crypto"
	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

// SecuriaService gates the sensitive-data subsystem. Every operation
// demands an Admin actor with a live secondary session, and every mutation
// or decrypted read is audited.
type SecuriaService struct {
	repo     ports.SecuriaRepository
	users    ports.UserRepository
	sessions ports.SessionStore
	audit    ports.AuditSink
	auditLog ports.AuditRepository
	cipher   *crypto.Cipher
	logger   zerolog.Logger
}

func NewSecuriaService(repo ports.SecuriaRepository, users ports.UserRepository, sessions ports.SessionStore, audit ports.AuditSink, auditLog ports.AuditRepository, cipher *crypto.Cipher, logger zerolog.Logger) *SecuriaService {
	return &SecuriaService{
		repo:     repo,
		users:    users,
		sessions: sessions,
		audit:    audit,
		auditLog: auditLog,
		cipher:   cipher,
		logger:   logger,
	}
}

// Reauthenticate verifies the actor's password again and opens a Securia
// session. The stored user record is re-fetched so a role or status change
// since login takes effect immediately.
func (s *SecuriaService) Reauthenticate(ctx context.Context, actor *domain.User, password string, meta ports.RequestMeta) (string, error) {
	stored, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return "", domain.ErrUnauthorized
	}
	if v := domain.ValidateStatus(stored); !v.IsValid {
		return "", fmt.Errorf("%w: %s", domain.ErrUserInactive, v.Reason)
	}
	if !stored.IsAdmin {
		return "", domain.ErrPermission
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	sessionID, err := s.sessions.Create(ctx, stored.ID, domain.SecuriaSessionTimeout)
	if err != nil {
		return "", fmt.Errorf("create securia session: %w", err)
	}

	s.record(stored.ID, "securia.login", "session", sessionID, meta, "")
	s.logger.Info().Str("user_id", stored.ID).Msg("securia session opened")
	return sessionID, nil
}

func (s *SecuriaService) HasValidSession(ctx context.Context, userID string) (bool, error) {
	return s.sessions.HasValid(ctx, userID)
}

func (s *SecuriaService) RefreshSession(ctx context.Context, userID string) error {
	return s.sessions.Refresh(ctx, userID, domain.SecuriaSessionTimeout)
}

func (s *SecuriaService) Logout(ctx context.Context, actor *domain.User, meta ports.RequestMeta) error {
	if err := s.sessions.InvalidateUser(ctx, actor.ID); err != nil {
		return err
	}
	s.record(actor.ID, "securia.logout", "session", "", meta, "")
	return nil
}

// requireSession enforces the secondary gate on every data operation.
func (s *SecuriaService) requireSession(ctx context.Context, actor *domain.User) error {
	if !actor.IsAdmin {
		return domain.ErrPermission
	}
	ok, err := s.sessions.HasValid(ctx, actor.ID)
	if err != nil {
		return fmt.Errorf("securia session check: %w", err)
	}
	if !ok {
		return domain.ErrSecuriaSessionRequired
	}
	return nil
}

func (s *SecuriaService) CreateClient(ctx context.Context, actor *domain.User, input ports.SecuriaClientInput, meta ports.RequestMeta) (*domain.SecuriaClient, error) {
	if err := s.requireSession(ctx, actor); err != nil {
		return nil, err
	}
	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", domain.ErrValidation)
	}

	c, err := s.clientFromInput(input)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.CreateClient(ctx, c)
	if err != nil {
		return nil, err
	}

	s.record(actor.ID, "securia.client.create", "securia_client", created.ID, meta, "")
	created.SSN = domain.MaskSSN(input.SSN)
	return created, nil
}

// GetClient returns the client with the SSN decrypted. The decrypted read
// itself is an audited action.
func (s *SecuriaService) GetClient(ctx context.Context, actor *domain.User, id string, meta ports.RequestMeta) (*domain.SecuriaClient, error) {
	if err := s.requireSession(ctx, actor); err != nil {
		return nil, err
	}
	c, err := s.repo.FindClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.SSN != "" {
		plain, err := s.cipher.Decrypt(c.SSN)
		if err != nil {
			return nil, fmt.Errorf("decrypt ssn: %w", err)
		}
		c.SSN = plain
	}
	s.record(actor.ID, "securia.client.view_pii", "securia_client", id, meta, "ssn decrypted")
	return c, nil
}

// ListClients returns clients with masked SSNs only.
func (s *SecuriaService) ListClients(ctx context.Context, actor *domain.User, page, limit int, meta ports.RequestMeta) ([]*domain.SecuriaClient, int64, error) {
	if err := s.requireSession(ctx, actor); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	clients, total, err := s.repo.ListClients(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for _, c := range clients {
		if c.SSN == "" {
			continue
		}
		plain, err := s.cipher.Decrypt(c.SSN)
		if err != nil {
			c.SSN = ""
			continue
		}
		c.SSN = domain.MaskSSN(plain)
	}
	s.record(actor.ID, "securia.client.list", "securia_client", "", meta, "")
	return clients, total, nil
}

func (s *SecuriaService) UpdateClient(ctx context.Context, actor *domain.User, id string, input ports.SecuriaClientInput, meta ports.RequestMeta) (*domain.SecuriaClient, error) {
	if err := s.requireSession(ctx, actor); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindClient(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.clientFromInput(input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if input.SSN == "" {
		updated.SSN = existing.SSN
	}
	if err := s.repo.UpdateClient(ctx, updated); err != nil {
		return nil, err
	}

	s.record(actor.ID, "securia.client.update", "securia_client", id, meta, "")
	updated.SSN = domain.MaskSSN(input.SSN)
	return updated, nil
}

func (s *SecuriaService) DeleteClient(ctx context.Context, actor *domain.User, id string, meta ports.RequestMeta) error {
	if err := s.requireSession(ctx, actor); err != nil {
		return err
	}
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.record(actor.ID, "securia.client.delete", "securia_client", id, meta, "")
	return nil
}

func (s *SecuriaService) CreateConsultant(ctx context.Context, actor *domain.User, input ports.SecuriaConsultantInput, meta ports.RequestMeta) (*domain.SecuriaConsultant, error) {
	if err := s.requireSession(ctx, actor); err != nil {
		return nil, err
	}
	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", domain.ErrValidation)
	}

	now := time.Now().UTC()
	c := &domain.SecuriaConsultant{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Status:    input.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Status == "" {
		c.Status = domain.StatusActive
	}
	created, err := s.repo.CreateConsultant(ctx, c)
	if err != nil {
		return nil, err
	}
	s.record(actor.ID, "securia.consultant.create", "securia_consultant", created.ID, meta, "")
	return created, nil
}

func (s *SecuriaService) GetConsultant(ctx context.Context, actor *domain.User, id string, meta ports.RequestMeta) (*domain.SecuriaConsultant, error) {
	if err := s.requireSession(ctx, actor); err != nil {
		return nil, err
	}
	c, err := s.repo.FindConsultant(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(actor.ID, "securia.consultant.view", "securia_consultant", id, meta, "")
	return c, nil
}

func (s *SecuriaService) ListConsultants(ctx context.Context, actor *domain.User, page, limit int, meta ports.RequestMeta) ([]*domain.SecuriaConsultant, int64, error) {
	if err := s.requireSession(ctx, actor); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	consultants, total, err := s.repo.ListConsultants(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	s.record(actor.ID, "securia.consultant.list", "securia_consultant", "", meta, "")
	return consultants, total, nil
}

func (s *SecuriaService) UpdateConsultant(ctx context.Context, actor *domain.User, id string, input ports.SecuriaConsultantInput, meta ports.RequestMeta) (*domain.SecuriaConsultant, error) {
	if err := s.requireSession(ctx, actor); err != nil {
		return nil, err
	}
	c, err := s.repo.FindConsultant(ctx, id)
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
	if input.Status != "" {
		c.Status = input.Status
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateConsultant(ctx, c); err != nil {
		return nil, err
	}
	s.record(actor.ID, "securia.consultant.update", "securia_consultant", id, meta, "")
	return c, nil
}

func (s *SecuriaService) DeleteConsultant(ctx context.Context, actor *domain.User, id string, meta ports.RequestMeta) error {
	if err := s.requireSession(ctx, actor); err != nil {
		return err
	}
	if err := s.repo.DeleteConsultant(ctx, id); err != nil {
		return err
	}
	s.record(actor.ID, "securia.consultant.delete", "securia_consultant", id, meta, "")
	return nil
}

func (s *SecuriaService) ListAudit(ctx context.Context, actor *domain.User, filter ports.ListAuditFilter) ([]*domain.AuditRecord, int64, error) {
	if err := s.requireSession(ctx, actor); err != nil {
		return nil, 0, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.auditLog.List(ctx, filter)
}

func (s *SecuriaService) clientFromInput(input ports.SecuriaClientInput) (*domain.SecuriaClient, error) {
	now := time.Now().UTC()
	c := &domain.SecuriaClient{
		ConsultantID: input.ConsultantID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		Status:       input.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c.Status == "" {
		c.Status = domain.StatusActive
	}
	if input.SSN != "" {
		enc, err := s.cipher.Encrypt(input.SSN)
		if err != nil {
			return nil, fmt.Errorf("encrypt ssn: %w", err)
		}
		c.SSN = enc
	}
	return c, nil
}

func (s *SecuriaService) record(actor, action, resource, resourceID string, meta ports.RequestMeta, details string) {
	s.audit.Record(domain.AuditRecord{
		Actor:      actor,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		Timestamp:  time.Now().UTC(),
		Details:    details,
	})
}

var _ ports.SecuriaService = (*SecuriaService)(nil)
