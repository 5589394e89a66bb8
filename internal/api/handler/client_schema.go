package handler

// --- Request types for the client aggregate ---

type applicantRequest struct {
	FirstName   string  `json:"first_name"    validate:"required"`
	LastName    string  `json:"last_name"     validate:"required"`
	Email       string  `json:"email"         validate:"omitempty,email"`
	Phone       string  `json:"phone"`
	DateOfBirth string  `json:"date_of_birth"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"         validate:"omitempty,len=2"`
	ZipCode     string  `json:"zip_code"`
	Employer    string  `json:"employer"`
	Income      float64 `json:"income"        validate:"gte=0"`
}

type liabilityRequest struct {
	Creditor       string  `json:"creditor"        validate:"required"`
	Type           string  `json:"type"`
	Balance        float64 `json:"balance"         validate:"gte=0"`
	MonthlyPayment float64 `json:"monthly_payment" validate:"gte=0"`
	InterestRate   float64 `json:"interest_rate"   validate:"gte=0"`
}

type mortgageRequest struct {
	Lender         string  `json:"lender"          validate:"required"`
	PropertyValue  float64 `json:"property_value"  validate:"gte=0"`
	Balance        float64 `json:"balance"         validate:"gte=0"`
	MonthlyPayment float64 `json:"monthly_payment" validate:"gte=0"`
	InterestRate   float64 `json:"interest_rate"   validate:"gte=0"`
	TermYears      int     `json:"term_years"      validate:"gte=0"`
}

type underwritingRequest struct {
	CreditScore  int     `json:"credit_score"   validate:"gte=0,lte=850"`
	AnnualIncome float64 `json:"annual_income"  validate:"gte=0"`
	DebtToIncome float64 `json:"debt_to_income" validate:"gte=0"`
	Decision     string  `json:"decision"`
	Notes        string  `json:"notes"`
}

type driverRequest struct {
	FullName      string `json:"full_name"      validate:"required"`
	SSN           string `json:"ssn"            validate:"required"`
	LicenseState  string `json:"license_state"  validate:"required,len=2"`
	LicenseNumber string `json:"license_number"`
	Age           int    `json:"age"            validate:"required"`
	Relationship  string `json:"relationship"`
}

type createClientRequest struct {
	ConsultantID       string               `json:"consultant_id"`
	Status             string               `json:"status" validate:"omitempty,oneof=Active Inactive Pending"`
	PayoffAmount       float64              `json:"payoff_amount" validate:"gte=0"`
	Applicant          *applicantRequest    `json:"applicant" validate:"required"`
	IncludeCoApplicant bool                 `json:"include_co_applicant"`
	CoApplicant        *applicantRequest    `json:"co_applicant"`
	Liabilities        []liabilityRequest   `json:"liabilities"`
	Mortgages          []mortgageRequest    `json:"mortgages"`
	Underwriting       *underwritingRequest `json:"underwriting"`
	Drivers            []driverRequest      `json:"drivers"`
}

// updateClientRequest is a partial aggregate update. Absent sections stay
// untouched; present array sections replace the stored children wholesale.
type updateClientRequest struct {
	Status       *string               `json:"status" validate:"omitempty,oneof=Active Inactive Pending"`
	PayoffAmount *float64              `json:"payoff_amount"`
	Applicant    *applicantRequest     `json:"applicant"`
	CoApplicant  *applicantRequest     `json:"co_applicant"`
	Liabilities  *[]liabilityRequest   `json:"liabilities"`
	Mortgages    *[]mortgageRequest    `json:"mortgages"`
	Underwriting *underwritingRequest  `json:"underwriting"`
	Drivers      *[]driverRequest      `json:"drivers"`
}

type updateUnderwritingRequest struct {
	Underwriting underwritingRequest `json:"underwriting" validate:"required"`
}
