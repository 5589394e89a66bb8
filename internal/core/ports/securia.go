package ports

import (
	"context"
	"time"

	"github.com/fieldstone/crm-system/internal/core/domain"
)

// SessionStore is the shared registry of Securia sessions. Backed by a
// keyed TTL store so validity holds across server instances.
type SessionStore interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	HasValid(ctx context.Context, userID string) (bool, error)
	Refresh(ctx context.Context, userID string, ttl time.Duration) error
	InvalidateUser(ctx context.Context, userID string) error
}

// AuditRepository persists the append-only Securia audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, rec *domain.AuditRecord) error
	List(ctx context.Context, filter ListAuditFilter) ([]*domain.AuditRecord, int64, error)
}

// AuditSink accepts audit records for asynchronous persistence.
type AuditSink interface {
	Record(rec domain.AuditRecord)
}

// ListAuditFilter carries query parameters for the audit log endpoint.
type ListAuditFilter struct {
	Actor    string
	Resource string
	From     time.Time
	To       time.Time
	Page     int
	Limit    int
}

// SecuriaRepository defines persistence for the sensitive-data entities.
type SecuriaRepository interface {
	CreateConsultant(ctx context.Context, c *domain.SecuriaConsultant) (*domain.SecuriaConsultant, error)
	FindConsultant(ctx context.Context, id string) (*domain.SecuriaConsultant, error)
	ListConsultants(ctx context.Context, page, limit int) ([]*domain.SecuriaConsultant, int64, error)
	UpdateConsultant(ctx context.Context, c *domain.SecuriaConsultant) error
	DeleteConsultant(ctx context.Context, id string) error

	CreateClient(ctx context.Context, c *domain.SecuriaClient) (*domain.SecuriaClient, error)
	FindClient(ctx context.Context, id string) (*domain.SecuriaClient, error)
	ListClients(ctx context.Context, page, limit int) ([]*domain.SecuriaClient, int64, error)
	UpdateClient(ctx context.Context, c *domain.SecuriaClient) error
	DeleteClient(ctx context.Context, id string) error
}

// RequestMeta identifies the caller for audit purposes.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// SecuriaClientInput carries SecuriaClient fields; SSN arrives plaintext
// and is encrypted before persistence.
type SecuriaClientInput struct {
	ConsultantID string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	SSN          string
	Status       string
}

// SecuriaConsultantInput carries SecuriaConsultant fields.
type SecuriaConsultantInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Status    string
}

// SecuriaService gates the sensitive-data subsystem behind an Admin-only
// re-authentication and a secondary session.
type SecuriaService interface {
	Reauthenticate(ctx context.Context, actor *domain.User, password string, meta RequestMeta) (string, error)
	HasValidSession(ctx context.Context, userID string) (bool, error)
	RefreshSession(ctx context.Context, userID string) error
	Logout(ctx context.Context, actor *domain.User, meta RequestMeta) error

	CreateClient(ctx context.Context, actor *domain.User, input SecuriaClientInput, meta RequestMeta) (*domain.SecuriaClient, error)
	GetClient(ctx context.Context, actor *domain.User, id string, meta RequestMeta) (*domain.SecuriaClient, error)
	ListClients(ctx context.Context, actor *domain.User, page, limit int, meta RequestMeta) ([]*domain.SecuriaClient, int64, error)
	UpdateClient(ctx context.Context, actor *domain.User, id string, input SecuriaClientInput, meta RequestMeta) (*domain.SecuriaClient, error)
	DeleteClient(ctx context.Context, actor *domain.User, id string, meta RequestMeta) error

	CreateConsultant(ctx context.Context, actor *domain.User, input SecuriaConsultantInput, meta RequestMeta) (*domain.SecuriaConsultant, error)
	GetConsultant(ctx context.Context, actor *domain.User, id string, meta RequestMeta) (*domain.SecuriaConsultant, error)
	ListConsultants(ctx context.Context, actor *domain.User, page, limit int, meta RequestMeta) ([]*domain.SecuriaConsultant, int64, error)
	UpdateConsultant(ctx context.Context, actor *domain.User, id string, input SecuriaConsultantInput, meta RequestMeta) (*domain.SecuriaConsultant, error)
	DeleteConsultant(ctx context.Context, actor *domain.User, id string, meta RequestMeta) error

	ListAudit(ctx context.Context, actor *domain.User, filter ListAuditFilter) ([]*domain.AuditRecord, int64, error)
}
