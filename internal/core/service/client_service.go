package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

const clientCounter = "client_code"

// ClientService orchestrates the client aggregate. Every create, update and
// delete runs inside one transaction: children are never visible as
// committed unless the root's reference list was written in the same
// transaction.
type ClientService struct {
	repo     ports.ClientRepository
	tx       ports.TxRunner
	counters ports.CounterRepository
	logger   zerolog.Logger
}

func NewClientService(repo ports.ClientRepository, tx ports.TxRunner, counters ports.CounterRepository, logger zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, tx: tx, counters: counters, logger: logger}
}

// Create builds the whole aggregate in one transaction: the root first so
// its id exists, then the applicant (and co-applicant only when the include
// flag is set) and the array children stamped with that id, then the root
// is patched with the child id lists.
func (s *ClientService) Create(ctx context.Context, actor *domain.User, input ports.CreateClientInput) (*domain.ClientAggregate, error) {
	consultantID := input.ConsultantID
	if consultantID == "" {
		consultantID = actor.ConsultantID
	}
	if !actor.IsAdmin && consultantID != actor.ConsultantID {
		return nil, fmt.Errorf("%w: cannot create clients for another consultant", domain.ErrPermission)
	}
	for i := range input.Drivers {
		if err := domain.ValidateDriver(driverFromInput(input.Drivers[i], "")); err != nil {
			return nil, err
		}
	}

	seq, err := s.counters.Next(ctx, clientCounter)
	if err != nil {
		return nil, fmt.Errorf("assign client code: %w", err)
	}

	now := time.Now().UTC()
	client := &domain.Client{
		ClientCode:   fmt.Sprintf("CLI-%06d", seq),
		ConsultantID: consultantID,
		Status:       input.Status,
		EntryDate:    now,
		PayoffAmount: input.PayoffAmount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if client.Status == "" {
		client.Status = domain.StatusActive
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		clientID, err := s.repo.CreateClient(ctx, client)
		if err != nil {
			return err
		}
		client.ID = clientID

		// Children carry client_id so the by-client delete filters reach
		// them; the root must exist before any child is written.
		if input.Applicant != nil {
			id, err := s.repo.CreateApplicant(ctx, applicantFromInput(*input.Applicant, clientID))
			if err != nil {
				return err
			}
			client.ApplicantID = id
		}
		if input.IncludeCoApplicant && input.CoApplicant != nil {
			id, err := s.repo.CreateCoApplicant(ctx, coApplicantFromInput(*input.CoApplicant, clientID))
			if err != nil {
				return err
			}
			client.CoApplicantID = id
		}

		if err := s.createChildren(ctx, client, input.Liabilities, input.Mortgages, input.Drivers, now); err != nil {
			return err
		}
		if input.Underwriting != nil {
			id, err := s.repo.CreateUnderwriting(ctx, underwritingFromInput(*input.Underwriting, clientID, now))
			if err != nil {
				return err
			}
			client.UnderwritingID = id
		}

		// The root's reference lists are authoritative; write them last so
		// the commit makes root and children visible together.
		client.UpdatedAt = now
		return s.repo.UpdateClient(ctx, client)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("consultant_id", consultantID).Msg("client aggregate create aborted")
		return nil, err
	}

	s.logger.Info().Str("client_code", client.ClientCode).Str("consultant_id", consultantID).Msg("client created")
	return s.fetchAggregate(ctx, client.ID)
}

// Get resolves by internal id or client code and returns the populated
// aggregate. Non-admin actors only see their own clients.
func (s *ClientService) Get(ctx context.Context, actor *domain.User, idOrCode string) (*domain.ClientAggregate, error) {
	client, err := s.resolve(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && client.ConsultantID != actor.ConsultantID {
		return nil, domain.ErrPermission
	}
	return s.fetchAggregate(ctx, client.ID)
}

func (s *ClientService) List(ctx context.Context, actor *domain.User, filter ports.ListClientsFilter) ([]*domain.Client, int64, error) {
	if !actor.IsAdmin {
		filter.ConsultantID = actor.ConsultantID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.ListClients(ctx, filter)
}

// Update patches the aggregate in one transaction. Sections absent from
// the payload are untouched; liabilities, mortgages and drivers are
// replaced wholesale (delete all, recreate) when their section is present.
func (s *ClientService) Update(ctx context.Context, actor *domain.User, idOrCode string, input ports.UpdateClientInput) (*domain.ClientAggregate, error) {
	client, err := s.resolve(ctx, idOrCode)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && client.ConsultantID != actor.ConsultantID {
		return nil, domain.ErrPermission
	}
	if input.Drivers != nil {
		for i := range *input.Drivers {
			if err := domain.ValidateDriver(driverFromInput((*input.Drivers)[i], client.ID)); err != nil {
				return nil, err
			}
		}
	}

	now := time.Now().UTC()
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if input.Status != nil {
			client.Status = *input.Status
		}
		if input.PayoffAmount != nil {
			client.PayoffAmount = *input.PayoffAmount
		}

		if input.Applicant != nil {
			if client.ApplicantID == "" {
				id, err := s.repo.CreateApplicant(ctx, applicantFromInput(*input.Applicant, client.ID))
				if err != nil {
					return err
				}
				client.ApplicantID = id
			} else {
				a := applicantFromInput(*input.Applicant, client.ID)
				a.ID = client.ApplicantID
				if err := s.repo.UpdateApplicant(ctx, a); err != nil {
					return err
				}
			}
		}
		if input.CoApplicant != nil {
			if client.CoApplicantID == "" {
				id, err := s.repo.CreateCoApplicant(ctx, coApplicantFromInput(*input.CoApplicant, client.ID))
				if err != nil {
					return err
				}
				client.CoApplicantID = id
			} else {
				a := coApplicantFromInput(*input.CoApplicant, client.ID)
				a.ID = client.CoApplicantID
				if err := s.repo.UpdateCoApplicant(ctx, a); err != nil {
					return err
				}
			}
		}

		if input.Liabilities != nil {
			if err := s.repo.DeleteLiabilitiesByClient(ctx, client.ID); err != nil {
				return err
			}
			client.LiabilityIDs = nil
		}
		if input.Mortgages != nil {
			if err := s.repo.DeleteMortgagesByClient(ctx, client.ID); err != nil {
				return err
			}
			client.MortgageIDs = nil
		}
		if input.Drivers != nil {
			if err := s.repo.DeleteDriversByClient(ctx, client.ID); err != nil {
				return err
			}
			client.DriverIDs = nil
		}
		if err := s.createChildren(ctx, client, deref(input.Liabilities), deref(input.Mortgages), deref(input.Drivers), now); err != nil {
			return err
		}

		if input.Underwriting != nil {
			if client.UnderwritingID == "" {
				id, err := s.repo.CreateUnderwriting(ctx, underwritingFromInput(*input.Underwriting, client.ID, now))
				if err != nil {
					return err
				}
				client.UnderwritingID = id
			} else {
				u := underwritingFromInput(*input.Underwriting, client.ID, now)
				u.ID = client.UnderwritingID
				if err := s.repo.UpdateUnderwriting(ctx, u); err != nil {
					return err
				}
			}
		}

		client.UpdatedAt = now
		return s.repo.UpdateClient(ctx, client)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("client_id", client.ID).Msg("client aggregate update aborted")
		return nil, err
	}

	return s.fetchAggregate(ctx, client.ID)
}

// Delete removes the aggregate: children across all six collections first,
// then the root, in one transaction.
func (s *ClientService) Delete(ctx context.Context, actor *domain.User, idOrCode string) error {
	client, err := s.resolve(ctx, idOrCode)
	if err != nil {
		return err
	}
	if !actor.IsAdmin && client.ConsultantID != actor.ConsultantID {
		return domain.ErrPermission
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteApplicantsByClient(ctx, client.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteCoApplicantsByClient(ctx, client.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteLiabilitiesByClient(ctx, client.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteMortgagesByClient(ctx, client.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteUnderwritingsByClient(ctx, client.ID); err != nil {
			return err
		}
		if err := s.repo.DeleteDriversByClient(ctx, client.ID); err != nil {
			return err
		}
		return s.repo.DeleteClient(ctx, client.ID)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("client_id", client.ID).Msg("client aggregate delete aborted")
		return err
	}
	s.logger.Info().Str("client_code", client.ClientCode).Msg("client deleted")
	return nil
}

// createChildren inserts array-valued children and appends their ids to the
// root's reference lists. The sub-createdAt stamp is shared so a replace
// reads as one edit.
func (s *ClientService) createChildren(ctx context.Context, client *domain.Client, liabilities []ports.LiabilityInput, mortgages []ports.MortgageInput, drivers []ports.DriverInput, now time.Time) error {
	for _, in := range liabilities {
		l := &domain.Liability{
			ClientID:       client.ID,
			Creditor:       in.Creditor,
			Type:           in.Type,
			Balance:        in.Balance,
			MonthlyPayment: in.MonthlyPayment,
			InterestRate:   in.InterestRate,
			CreatedAt:      now,
		}
		id, err := s.repo.CreateLiability(ctx, l)
		if err != nil {
			return err
		}
		client.LiabilityIDs = append(client.LiabilityIDs, id)
	}
	for _, in := range mortgages {
		m := &domain.Mortgage{
			ClientID:       client.ID,
			Lender:         in.Lender,
			PropertyValue:  in.PropertyValue,
			Balance:        in.Balance,
			MonthlyPayment: in.MonthlyPayment,
			InterestRate:   in.InterestRate,
			TermYears:      in.TermYears,
			CreatedAt:      now,
		}
		id, err := s.repo.CreateMortgage(ctx, m)
		if err != nil {
			return err
		}
		client.MortgageIDs = append(client.MortgageIDs, id)
	}
	for _, in := range drivers {
		d := driverFromInput(in, client.ID)
		d.CreatedAt = now
		id, err := s.repo.CreateDriver(ctx, d)
		if err != nil {
			return err
		}
		client.DriverIDs = append(client.DriverIDs, id)
	}
	return nil
}

// resolve loads the root client by hex id first, then by client code.
func (s *ClientService) resolve(ctx context.Context, idOrCode string) (*domain.Client, error) {
	if strings.HasPrefix(idOrCode, "CLI-") {
		return s.repo.FindClientByCode(ctx, idOrCode)
	}
	client, err := s.repo.FindClientByID(ctx, idOrCode)
	if err == nil {
		return client, nil
	}
	return s.repo.FindClientByCode(ctx, idOrCode)
}

func (s *ClientService) fetchAggregate(ctx context.Context, clientID string) (*domain.ClientAggregate, error) {
	client, err := s.repo.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	agg := &domain.ClientAggregate{Client: *client}
	if client.ApplicantID != "" {
		if agg.Applicant, err = s.repo.FindApplicant(ctx, client.ApplicantID); err != nil {
			return nil, err
		}
	}
	if client.CoApplicantID != "" {
		if agg.CoApplicant, err = s.repo.FindCoApplicant(ctx, client.CoApplicantID); err != nil {
			return nil, err
		}
	}
	if agg.Liabilities, err = s.repo.FindLiabilitiesByClient(ctx, client.ID); err != nil {
		return nil, err
	}
	if agg.Mortgages, err = s.repo.FindMortgagesByClient(ctx, client.ID); err != nil {
		return nil, err
	}
	if client.UnderwritingID != "" {
		if agg.Underwriting, err = s.repo.FindUnderwriting(ctx, client.UnderwritingID); err != nil {
			return nil, err
		}
	}
	if agg.Drivers, err = s.repo.FindDriversByClient(ctx, client.ID); err != nil {
		return nil, err
	}
	return agg, nil
}

func applicantFromInput(in ports.ApplicantInput, clientID string) *domain.Applicant {
	now := time.Now().UTC()
	return &domain.Applicant{
		ClientID:    clientID,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		DateOfBirth: in.DateOfBirth,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		ZipCode:     in.ZipCode,
		Employer:    in.Employer,
		Income:      in.Income,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func coApplicantFromInput(in ports.ApplicantInput, clientID string) *domain.CoApplicant {
	a := applicantFromInput(in, clientID)
	return &domain.CoApplicant{
		ClientID:    a.ClientID,
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
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func underwritingFromInput(in ports.UnderwritingInput, clientID string, now time.Time) *domain.Underwriting {
	return &domain.Underwriting{
		ClientID:     clientID,
		CreditScore:  in.CreditScore,
		AnnualIncome: in.AnnualIncome,
		DebtToIncome: in.DebtToIncome,
		Decision:     in.Decision,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func driverFromInput(in ports.DriverInput, clientID string) *domain.Driver {
	return &domain.Driver{
		ClientID:      clientID,
		FullName:      in.FullName,
		SSN:           in.SSN,
		LicenseState:  in.LicenseState,
		LicenseNumber: in.LicenseNumber,
		Age:           in.Age,
		Relationship:  in.Relationship,
	}
}

func deref[T any](p *[]T) []T {
	if p == nil {
		return nil
	}
	return *p
}

var _ ports.ClientService = (*ClientService)(nil)
