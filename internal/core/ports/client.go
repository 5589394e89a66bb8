package ports

import (
	"context"

	"github.com/fieldstone/crm-system/internal/core/domain"
)

// TxRunner executes fn atomically. Every repository call made with the ctx
// passed to fn participates in the same transaction; when fn returns an
// error the transaction is aborted and nothing becomes visible.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ClientRepository defines per-collection persistence for the client
// aggregate. The transactional orchestration lives in the service layer;
// all methods honour a transaction session carried in ctx.
type ClientRepository interface {
	CreateClient(ctx context.Context, c *domain.Client) (string, error)
	UpdateClient(ctx context.Context, c *domain.Client) error
	FindClientByID(ctx context.Context, id string) (*domain.Client, error)
	FindClientByCode(ctx context.Context, code string) (*domain.Client, error)
	ListClients(ctx context.Context, filter ListClientsFilter) ([]*domain.Client, int64, error)
	DeleteClient(ctx context.Context, id string) error

	CreateApplicant(ctx context.Context, a *domain.Applicant) (string, error)
	UpdateApplicant(ctx context.Context, a *domain.Applicant) error
	FindApplicant(ctx context.Context, id string) (*domain.Applicant, error)
	DeleteApplicantsByClient(ctx context.Context, clientID string) error

	CreateCoApplicant(ctx context.Context, a *domain.CoApplicant) (string, error)
	UpdateCoApplicant(ctx context.Context, a *domain.CoApplicant) error
	FindCoApplicant(ctx context.Context, id string) (*domain.CoApplicant, error)
	DeleteCoApplicantsByClient(ctx context.Context, clientID string) error

	CreateLiability(ctx context.Context, l *domain.Liability) (string, error)
	FindLiabilitiesByClient(ctx context.Context, clientID string) ([]domain.Liability, error)
	DeleteLiabilitiesByClient(ctx context.Context, clientID string) error

	CreateMortgage(ctx context.Context, m *domain.Mortgage) (string, error)
	FindMortgagesByClient(ctx context.Context, clientID string) ([]domain.Mortgage, error)
	DeleteMortgagesByClient(ctx context.Context, clientID string) error

	CreateUnderwriting(ctx context.Context, u *domain.Underwriting) (string, error)
	UpdateUnderwriting(ctx context.Context, u *domain.Underwriting) error
	FindUnderwriting(ctx context.Context, id string) (*domain.Underwriting, error)
	DeleteUnderwritingsByClient(ctx context.Context, clientID string) error

	CreateDriver(ctx context.Context, d *domain.Driver) (string, error)
	FindDriversByClient(ctx context.Context, clientID string) ([]domain.Driver, error)
	DeleteDriversByClient(ctx context.Context, clientID string) error
}

// ListClientsFilter carries query parameters for listing clients.
// ConsultantID is enforced by the service for non-admin actors.
type ListClientsFilter struct {
	ConsultantID string
	Status       string
	Search       string
	Page         int
	Limit        int
}

// ApplicantInput is the intake payload for an applicant or co-applicant.
type ApplicantInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth string
	Address     string
	City        string
	State       string
	ZipCode     string
	Employer    string
	Income      float64
}

// LiabilityInput is one liability in an intake payload.
type LiabilityInput struct {
	Creditor       string
	Type           string
	Balance        float64
	MonthlyPayment float64
	InterestRate   float64
}

// MortgageInput is one mortgage in an intake payload.
type MortgageInput struct {
	Lender         string
	PropertyValue  float64
	Balance        float64
	MonthlyPayment float64
	InterestRate   float64
	TermYears      int
}

// UnderwritingInput is the underwriting section of an intake payload.
type UnderwritingInput struct {
	CreditScore  int
	AnnualIncome float64
	DebtToIncome float64
	Decision     string
	Notes        string
}

// DriverInput is one driver in an intake payload.
type DriverInput struct {
	FullName      string
	SSN           string
	LicenseState  string
	LicenseNumber string
	Age           int
	Relationship  string
}

// CreateClientInput carries the whole aggregate for the transactional
// create. CoApplicant is only materialized when IncludeCoApplicant is set.
type CreateClientInput struct {
	ConsultantID       string
	Status             string
	PayoffAmount       float64
	Applicant          *ApplicantInput
	IncludeCoApplicant bool
	CoApplicant        *ApplicantInput
	Liabilities        []LiabilityInput
	Mortgages          []MortgageInput
	Underwriting       *UnderwritingInput
	Drivers            []DriverInput
}

// UpdateClientInput is a partial aggregate update. Nil sections are left
// untouched; non-nil Liabilities/Mortgages/Drivers replace the existing
// children wholesale.
type UpdateClientInput struct {
	Status       *string
	PayoffAmount *float64
	Applicant    *ApplicantInput
	CoApplicant  *ApplicantInput
	Liabilities  *[]LiabilityInput
	Mortgages    *[]MortgageInput
	Underwriting *UnderwritingInput
	Drivers      *[]DriverInput
}

// ClientService defines the aggregate use cases. IDOrCode parameters accept
// either the internal id or the external client code.
type ClientService interface {
	Create(ctx context.Context, actor *domain.User, input CreateClientInput) (*domain.ClientAggregate, error)
	Get(ctx context.Context, actor *domain.User, idOrCode string) (*domain.ClientAggregate, error)
	List(ctx context.Context, actor *domain.User, filter ListClientsFilter) ([]*domain.Client, int64, error)
	Update(ctx context.Context, actor *domain.User, idOrCode string, input UpdateClientInput) (*domain.ClientAggregate, error)
	Delete(ctx context.Context, actor *domain.User, idOrCode string) error
}
