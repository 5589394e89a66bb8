package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var ErrClientNotFound = errors.New("client not found")
var ErrDuplicateClient = errors.New("client already exists")

// Client is the aggregate root. After a create or update commits, the ID
// arrays below are the authoritative list of child documents; children are
// never visible as committed unless these references were written in the
// same transaction.
type Client struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	ClientCode     string    `json:"client_code" bson:"client_code"`
	ConsultantID   string    `json:"consultant_id" bson:"consultant_id"`
	Status         string    `json:"status" bson:"status"`
	EntryDate      time.Time `json:"entry_date" bson:"entry_date"`
	PayoffAmount   float64   `json:"payoff_amount,omitempty" bson:"payoff_amount,omitempty"`
	ApplicantID    string    `json:"applicant_id,omitempty" bson:"applicant_id,omitempty"`
	CoApplicantID  string    `json:"co_applicant_id,omitempty" bson:"co_applicant_id,omitempty"`
	LiabilityIDs   []string  `json:"liability_ids,omitempty" bson:"liability_ids,omitempty"`
	MortgageIDs    []string  `json:"mortgage_ids,omitempty" bson:"mortgage_ids,omitempty"`
	UnderwritingID string    `json:"underwriting_id,omitempty" bson:"underwriting_id,omitempty"`
	DriverIDs      []string  `json:"driver_ids,omitempty" bson:"driver_ids,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// Applicant holds the primary applicant's personal details.
type Applicant struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	ClientID    string    `json:"client_id" bson:"client_id,omitempty"`
	FirstName   string    `json:"first_name" bson:"first_name"`
	LastName    string    `json:"last_name" bson:"last_name"`
	Email       string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone       string    `json:"phone,omitempty" bson:"phone,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty" bson:"date_of_birth,omitempty"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	City        string    `json:"city,omitempty" bson:"city,omitempty"`
	State       string    `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode     string    `json:"zip_code,omitempty" bson:"zip_code,omitempty"`
	Employer    string    `json:"employer,omitempty" bson:"employer,omitempty"`
	Income      float64   `json:"income,omitempty" bson:"income,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// CoApplicant mirrors Applicant and is only materialized when the intake
// payload sets the include flag.
type CoApplicant struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	ClientID    string    `json:"client_id" bson:"client_id,omitempty"`
	FirstName   string    `json:"first_name" bson:"first_name"`
	LastName    string    `json:"last_name" bson:"last_name"`
	Email       string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone       string    `json:"phone,omitempty" bson:"phone,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty" bson:"date_of_birth,omitempty"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	City        string    `json:"city,omitempty" bson:"city,omitempty"`
	State       string    `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode     string    `json:"zip_code,omitempty" bson:"zip_code,omitempty"`
	Employer    string    `json:"employer,omitempty" bson:"employer,omitempty"`
	Income      float64   `json:"income,omitempty" bson:"income,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Liability is a single debt item on the client's balance sheet.
type Liability struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	ClientID       string    `json:"client_id" bson:"client_id"`
	Creditor       string    `json:"creditor" bson:"creditor"`
	Type           string    `json:"type,omitempty" bson:"type,omitempty"`
	Balance        float64   `json:"balance" bson:"balance"`
	MonthlyPayment float64   `json:"monthly_payment,omitempty" bson:"monthly_payment,omitempty"`
	InterestRate   float64   `json:"interest_rate,omitempty" bson:"interest_rate,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// Mortgage records an existing mortgage on a client property.
type Mortgage struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	ClientID       string    `json:"client_id" bson:"client_id"`
	Lender         string    `json:"lender" bson:"lender"`
	PropertyValue  float64   `json:"property_value,omitempty" bson:"property_value,omitempty"`
	Balance        float64   `json:"balance" bson:"balance"`
	MonthlyPayment float64   `json:"monthly_payment,omitempty" bson:"monthly_payment,omitempty"`
	InterestRate   float64   `json:"interest_rate,omitempty" bson:"interest_rate,omitempty"`
	TermYears      int       `json:"term_years,omitempty" bson:"term_years,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// Underwriting holds the single underwriting assessment for a client.
type Underwriting struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	ClientID     string    `json:"client_id" bson:"client_id"`
	CreditScore  int       `json:"credit_score,omitempty" bson:"credit_score,omitempty"`
	AnnualIncome float64   `json:"annual_income,omitempty" bson:"annual_income,omitempty"`
	DebtToIncome float64   `json:"debt_to_income,omitempty" bson:"debt_to_income,omitempty"`
	Decision     string    `json:"decision,omitempty" bson:"decision,omitempty"`
	Notes        string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Driver is a licensed driver attached to a client's auto coverage.
type Driver struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	ClientID      string    `json:"client_id" bson:"client_id"`
	FullName      string    `json:"full_name" bson:"full_name"`
	SSN           string    `json:"ssn,omitempty" bson:"ssn,omitempty"`
	LicenseState  string    `json:"license_state" bson:"license_state"`
	LicenseNumber string    `json:"license_number,omitempty" bson:"license_number,omitempty"`
	Age           int       `json:"age" bson:"age"`
	Relationship  string    `json:"relationship,omitempty" bson:"relationship,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

var (
	driverNameRe  = regexp.MustCompile(`^[A-Za-z][A-Za-z .,'-]{1,79}$`)
	driverSSNRe   = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	driverStateRe = regexp.MustCompile(`^[A-Z]{2}$`)
)

// ValidateDriver is the single validation routine for driver records,
// shared by the intake schema layer and the aggregate service.
func ValidateDriver(d *Driver) error {
	if !driverNameRe.MatchString(d.FullName) {
		return fmt.Errorf("%w: driver name %q is not a valid name", ErrValidation, d.FullName)
	}
	if d.SSN != "" && !driverSSNRe.MatchString(d.SSN) {
		return fmt.Errorf("%w: driver ssn must match NNN-NN-NNNN", ErrValidation)
	}
	if !driverStateRe.MatchString(d.LicenseState) {
		return fmt.Errorf("%w: driver license state must be a two-letter code", ErrValidation)
	}
	if d.Age < 16 || d.Age > 99 {
		return fmt.Errorf("%w: driver age must be between 16 and 99", ErrValidation)
	}
	return nil
}

// ClientAggregate is the fully populated view returned by reads and by the
// transactional create/update paths.
type ClientAggregate struct {
	Client       Client        `json:"client"`
	Applicant    *Applicant    `json:"applicant,omitempty"`
	CoApplicant  *CoApplicant  `json:"co_applicant,omitempty"`
	Liabilities  []Liability   `json:"liabilities"`
	Mortgages    []Mortgage    `json:"mortgages"`
	Underwriting *Underwriting `json:"underwriting,omitempty"`
	Drivers      []Driver      `json:"drivers"`
}
