package handler

import (
	"github.com/fieldstone/crm-system/internal/core/ports"
)

// --- Request → Service input ---

func toCreateClientInput(req createClientRequest) ports.CreateClientInput {
	return ports.CreateClientInput{
		ConsultantID:       req.ConsultantID,
		Status:             req.Status,
		PayoffAmount:       req.PayoffAmount,
		Applicant:          toApplicantInput(req.Applicant),
		IncludeCoApplicant: req.IncludeCoApplicant,
		CoApplicant:        toApplicantInput(req.CoApplicant),
		Liabilities:        toLiabilityInputs(req.Liabilities),
		Mortgages:          toMortgageInputs(req.Mortgages),
		Underwriting:       toUnderwritingInput(req.Underwriting),
		Drivers:            toDriverInputs(req.Drivers),
	}
}

func toUpdateClientInput(req updateClientRequest) ports.UpdateClientInput {
	input := ports.UpdateClientInput{
		Status:       req.Status,
		PayoffAmount: req.PayoffAmount,
		Applicant:    toApplicantInput(req.Applicant),
		CoApplicant:  toApplicantInput(req.CoApplicant),
		Underwriting: toUnderwritingInput(req.Underwriting),
	}
	if req.Liabilities != nil {
		ls := toLiabilityInputs(*req.Liabilities)
		input.Liabilities = &ls
	}
	if req.Mortgages != nil {
		ms := toMortgageInputs(*req.Mortgages)
		input.Mortgages = &ms
	}
	if req.Drivers != nil {
		ds := toDriverInputs(*req.Drivers)
		input.Drivers = &ds
	}
	return input
}

func toApplicantInput(a *applicantRequest) *ports.ApplicantInput {
	if a == nil {
		return nil
	}
	return &ports.ApplicantInput{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Email:       a.Email,
		Phone:       a.Phone,
		DateOfBirth: a.DateOfBirth,
		Address:     a.Address,
		City:        a.City,
		State:       a.State,
		ZipCode:     a.ZipCode,
		Employer:    a.Employer,
		Income:      a.Income,
	}
}

func toLiabilityInputs(ls []liabilityRequest) []ports.LiabilityInput {
	out := make([]ports.LiabilityInput, len(ls))
	for i, l := range ls {
		out[i] = ports.LiabilityInput{
			Creditor:       l.Creditor,
			Type:           l.Type,
			Balance:        l.Balance,
			MonthlyPayment: l.MonthlyPayment,
			InterestRate:   l.InterestRate,
		}
	}
	return out
}

func toMortgageInputs(ms []mortgageRequest) []ports.MortgageInput {
	out := make([]ports.MortgageInput, len(ms))
	for i, m := range ms {
		out[i] = ports.MortgageInput{
			Lender:         m.Lender,
			PropertyValue:  m.PropertyValue,
			Balance:        m.Balance,
			MonthlyPayment: m.MonthlyPayment,
			InterestRate:   m.InterestRate,
			TermYears:      m.TermYears,
		}
	}
	return out
}

func toUnderwritingInput(u *underwritingRequest) *ports.UnderwritingInput {
	if u == nil {
		return nil
	}
	return &ports.UnderwritingInput{
		CreditScore:  u.CreditScore,
		AnnualIncome: u.AnnualIncome,
		DebtToIncome: u.DebtToIncome,
		Decision:     u.Decision,
		Notes:        u.Notes,
	}
}

func toDriverInputs(ds []driverRequest) []ports.DriverInput {
	out := make([]ports.DriverInput, len(ds))
	for i, d := range ds {
		out[i] = ports.DriverInput{
			FullName:      d.FullName,
			SSN:           d.SSN,
			LicenseState:  d.LicenseState,
			LicenseNumber: d.LicenseNumber,
			Age:           d.Age,
			Relationship:  d.Relationship,
		}
	}
	return out
}
