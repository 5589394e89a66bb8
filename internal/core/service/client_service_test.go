package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

// stubClientRepo keeps the aggregate in maps. Together with stubTxRunner,
// which snapshots and restores the maps around the callback, it reproduces
// commit/abort visibility for the orchestration tests.
type stubClientRepo struct {
	clients       map[string]*domain.Client
	applicants    map[string]*domain.Applicant
	coApplicants  map[string]*domain.CoApplicant
	liabilities   map[string]*domain.Liability
	mortgages     map[string]*domain.Mortgage
	underwritings map[string]*domain.Underwriting
	drivers       map[string]*domain.Driver
	nextID        int

	failLiabilityAt int // error on the Nth liability insert, 0 disables
	liabilityCount  int
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{
		clients:       make(map[string]*domain.Client),
		applicants:    make(map[string]*domain.Applicant),
		coApplicants:  make(map[string]*domain.CoApplicant),
		liabilities:   make(map[string]*domain.Liability),
		mortgages:     make(map[string]*domain.Mortgage),
		underwritings: make(map[string]*domain.Underwriting),
		drivers:       make(map[string]*domain.Driver),
	}
}

func (r *stubClientRepo) id(prefix string) string {
	r.nextID++
	return prefix + "-" + strconv.Itoa(r.nextID)
}

func (r *stubClientRepo) CreateClient(_ context.Context, c *domain.Client) (string, error) {
	clone := *c
	clone.ID = r.id("cli")
	r.clients[clone.ID] = &clone
	return clone.ID, nil
}

func (r *stubClientRepo) UpdateClient(_ context.Context, c *domain.Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return domain.ErrClientNotFound
	}
	clone := *c
	r.clients[c.ID] = &clone
	return nil
}

func (r *stubClientRepo) FindClientByID(_ context.Context, id string) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubClientRepo) FindClientByCode(_ context.Context, code string) (*domain.Client, error) {
	for _, c := range r.clients {
		if c.ClientCode == code {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r *stubClientRepo) ListClients(_ context.Context, filter ports.ListClientsFilter) ([]*domain.Client, int64, error) {
	var out []*domain.Client
	for _, c := range r.clients {
		if filter.ConsultantID != "" && c.ConsultantID != filter.ConsultantID {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) DeleteClient(_ context.Context, id string) error {
	delete(r.clients, id)
	return nil
}

func (r *stubClientRepo) CreateApplicant(_ context.Context, a *domain.Applicant) (string, error) {
	clone := *a
	clone.ID = r.id("app")
	r.applicants[clone.ID] = &clone
	return clone.ID, nil
}

func (r *stubClientRepo) UpdateApplicant(_ context.Context, a *domain.Applicant) error {
	clone := *a
	r.applicants[a.ID] = &clone
	return nil
}

func (r *stubClientRepo) FindApplicant(_ context.Context, id string) (*domain.Applicant, error) {
	a, ok := r.applicants[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubClientRepo) DeleteApplicantsByClient(_ context.Context, clientID string) error {
	for id, a := range r.applicants {
		if a.ClientID == clientID {
			delete(r.applicants, id)
		}
	}
	return nil
}

func (r *stubClientRepo) CreateCoApplicant(_ context.Context, a *domain.CoApplicant) (string, error) {
	clone := *a
	clone.ID = r.id("coapp")
	r.coApplicants[clone.ID] = &clone
	return clone.ID, nil
}

func (r *stubClientRepo) UpdateCoApplicant(_ context.Context, a *domain.CoApplicant) error {
	clone := *a
	r.coApplicants[a.ID] = &clone
	return nil
}

func (r *stubClientRepo) FindCoApplicant(_ context.Context, id string) (*domain.CoApplicant, error) {
	a, ok := r.coApplicants[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubClientRepo) DeleteCoApplicantsByClient(_ context.Context, clientID string) error {
	for id, a := range r.coApplicants {
		if a.ClientID == clientID {
			delete(r.coApplicants, id)
		}
	}
	return nil
}

func (r *stubClientRepo) CreateLiability(_ context.Context, l *domain.Liability) (string, error) {
	r.liabilityCount++
	if r.failLiabilityAt > 0 && r.liabilityCount >= r.failLiabilityAt {
		return "", errors.New("liability insert failed")
	}
	clone := *l
	clone.ID = r.id("lia")
	r.liabilities[clone.ID] = &clone
	return clone.ID, nil
}

func (r *stubClientRepo) FindLiabilitiesByClient(_ context.Context, clientID string) ([]domain.Liability, error) {
	var out []domain.Liability
	for _, l := range r.liabilities {
		if l.ClientID == clientID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubClientRepo) DeleteLiabilitiesByClient(_ context.Context, clientID string) error {
	for id, l := range r.liabilities {
		if l.ClientID == clientID {
			delete(r.liabilities, id)
		}
	}
	return nil
}

func (r *stubClientRepo) CreateMortgage(_ context.Context, m *domain.Mortgage) (string, error) {
	clone := *m
	clone.ID = r.id("mort")
	r.mortgages[clone.ID] = &clone
	return clone.ID, nil
}

func (r *stubClientRepo) FindMortgagesByClient(_ context.Context, clientID string) ([]domain.Mortgage, error) {
	var out []domain.Mortgage
	for _, m := range r.mortgages {
		if m.ClientID == clientID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubClientRepo) DeleteMortgagesByClient(_ context.Context, clientID string) error {
	for id, m := range r.mortgages {
		if m.ClientID == clientID {
			delete(r.mortgages, id)
		}
	}
	return nil
}

func (r *stubClientRepo) CreateUnderwriting(_ context.Context, u *domain.Underwriting) (string, error) {
	clone := *u
	clone.ID = r.id("uw")
	r.underwritings[clone.ID] = &clone
	return clone.ID, nil
}

func (r *stubClientRepo) UpdateUnderwriting(_ context.Context, u *domain.Underwriting) error {
	clone := *u
	r.underwritings[u.ID] = &clone
	return nil
}

func (r *stubClientRepo) FindUnderwriting(_ context.Context, id string) (*domain.Underwriting, error) {
	u, ok := r.underwritings[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubClientRepo) DeleteUnderwritingsByClient(_ context.Context, clientID string) error {
	for id, u := range r.underwritings {
		if u.ClientID == clientID {
			delete(r.underwritings, id)
		}
	}
	return nil
}

func (r *stubClientRepo) CreateDriver(_ context.Context, d *domain.Driver) (string, error) {
	clone := *d
	clone.ID = r.id("drv")
	r.drivers[clone.ID] = &clone
	return clone.ID, nil
}

func (r *stubClientRepo) FindDriversByClient(_ context.Context, clientID string) ([]domain.Driver, error) {
	var out []domain.Driver
	for _, d := range r.drivers {
		if d.ClientID == clientID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubClientRepo) DeleteDriversByClient(_ context.Context, clientID string) error {
	for id, d := range r.drivers {
		if d.ClientID == clientID {
			delete(r.drivers, id)
		}
	}
	return nil
}

func (r *stubClientRepo) snapshot() *stubClientRepo {
	s := newStubClientRepo()
	s.nextID = r.nextID
	for k, v := range r.clients {
		clone := *v
		s.clients[k] = &clone
	}
	for k, v := range r.applicants {
		clone := *v
		s.applicants[k] = &clone
	}
	for k, v := range r.coApplicants {
		clone := *v
		s.coApplicants[k] = &clone
	}
	for k, v := range r.liabilities {
		clone := *v
		s.liabilities[k] = &clone
	}
	for k, v := range r.mortgages {
		clone := *v
		s.mortgages[k] = &clone
	}
	for k, v := range r.underwritings {
		clone := *v
		s.underwritings[k] = &clone
	}
	for k, v := range r.drivers {
		clone := *v
		s.drivers[k] = &clone
	}
	return s
}

func (r *stubClientRepo) restore(s *stubClientRepo) {
	r.nextID = s.nextID
	r.clients = s.clients
	r.applicants = s.applicants
	r.coApplicants = s.coApplicants
	r.liabilities = s.liabilities
	r.mortgages = s.mortgages
	r.underwritings = s.underwritings
	r.drivers = s.drivers
}

// stubTxRunner snapshots the repo before the callback and rolls the maps
// back when it errors, mimicking transaction abort semantics.
type stubTxRunner struct {
	repo *stubClientRepo
}

func (t *stubTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	before := t.repo.snapshot()
	if err := fn(ctx); err != nil {
		t.repo.restore(before)
		return err
	}
	return nil
}

func newClientService(repo *stubClientRepo) *ClientService {
	return NewClientService(repo, &stubTxRunner{repo: repo}, newStubCounter(), zerolog.Nop())
}

func sampleCreateInput() ports.CreateClientInput {
	return ports.CreateClientInput{
		Applicant: &ports.ApplicantInput{FirstName: "Jane", LastName: "Doe"},
		Liabilities: []ports.LiabilityInput{
			{Creditor: "Visa", Balance: 1200},
			{Creditor: "Amex", Balance: 500},
		},
		Mortgages: []ports.MortgageInput{
			{Lender: "First Bank", Balance: 250000},
		},
		Underwriting: &ports.UnderwritingInput{CreditScore: 700},
	}
}

func TestClientService_Create_RoundTrip(t *testing.T) {
	repo := newStubClientRepo()
	svc := newClientService(repo)
	admin := activeUser("admin", domain.RoleAdmin)

	agg, err := svc.Create(context.Background(), admin, sampleCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if agg.Client.ClientCode != "CLI-000001" {
		t.Fatalf("client code = %q", agg.Client.ClientCode)
	}
	if agg.Applicant == nil {
		t.Fatalf("applicant not populated")
	}
	if len(agg.Liabilities) != 2 || len(agg.Mortgages) != 1 {
		t.Fatalf("child counts: %d liabilities, %d mortgages", len(agg.Liabilities), len(agg.Mortgages))
	}
	if agg.Underwriting == nil || agg.Underwriting.CreditScore != 700 {
		t.Fatalf("underwriting not populated: %+v", agg.Underwriting)
	}
	if len(agg.Client.LiabilityIDs) != 2 || len(agg.Client.MortgageIDs) != 1 {
		t.Fatalf("root reference lists not written: %+v", agg.Client)
	}
	for _, l := range agg.Liabilities {
		if l.ClientID != agg.Client.ID {
			t.Fatalf("liability %s references %q", l.ID, l.ClientID)
		}
	}
	// The stored applicant must carry the root's id, otherwise the
	// by-client delete filter never reaches it.
	stored, err := repo.FindApplicant(context.Background(), agg.Client.ApplicantID)
	if err != nil {
		t.Fatalf("FindApplicant: %v", err)
	}
	if stored.ClientID != agg.Client.ID {
		t.Fatalf("applicant references %q, want %q", stored.ClientID, agg.Client.ID)
	}

	// Fetch by code resolves the same aggregate.
	byCode, err := svc.Get(context.Background(), admin, "CLI-000001")
	if err != nil {
		t.Fatalf("Get by code: %v", err)
	}
	if byCode.Client.ID != agg.Client.ID {
		t.Fatalf("code lookup mismatch")
	}
}

func TestClientService_Create_CoApplicantFlag(t *testing.T) {
	repo := newStubClientRepo()
	svc := newClientService(repo)
	admin := activeUser("admin", domain.RoleAdmin)

	input := sampleCreateInput()
	input.CoApplicant = &ports.ApplicantInput{FirstName: "John", LastName: "Doe"}
	// Flag unset: the co-applicant payload is ignored.
	agg, err := svc.Create(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if agg.CoApplicant != nil {
		t.Fatalf("co-applicant materialized without the include flag")
	}

	input.IncludeCoApplicant = true
	agg, err = svc.Create(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("Create with flag: %v", err)
	}
	if agg.CoApplicant == nil || agg.CoApplicant.FirstName != "John" {
		t.Fatalf("co-applicant missing: %+v", agg.CoApplicant)
	}
	if agg.CoApplicant.ClientID != agg.Client.ID {
		t.Fatalf("co-applicant references %q, want %q", agg.CoApplicant.ClientID, agg.Client.ID)
	}
}

func TestClientService_Create_Atomicity(t *testing.T) {
	repo := newStubClientRepo()
	repo.failLiabilityAt = 2
	svc := newClientService(repo)
	admin := activeUser("admin", domain.RoleAdmin)

	if _, err := svc.Create(context.Background(), admin, sampleCreateInput()); err == nil {
		t.Fatalf("expected create to fail")
	}

	// Nothing from the attempt is visible: no root, no children.
	if len(repo.clients) != 0 {
		t.Fatalf("root client leaked: %d", len(repo.clients))
	}
	if len(repo.liabilities) != 0 {
		t.Fatalf("liabilities leaked: %d", len(repo.liabilities))
	}
	if len(repo.applicants) != 0 {
		t.Fatalf("applicants leaked: %d", len(repo.applicants))
	}
}

func TestClientService_Create_ConsultantScope(t *testing.T) {
	repo := newStubClientRepo()
	svc := newClientService(repo)
	bma := activeUser("bma", domain.RoleBMA)

	input := sampleCreateInput()
	input.ConsultantID = "CON-other"
	if _, err := svc.Create(context.Background(), bma, input); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}

	// Empty consultant id defaults to the actor's own.
	input.ConsultantID = ""
	agg, err := svc.Create(context.Background(), bma, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if agg.Client.ConsultantID != bma.ConsultantID {
		t.Fatalf("consultant id = %q", agg.Client.ConsultantID)
	}
}

func TestClientService_Update_WholesaleReplace(t *testing.T) {
	repo := newStubClientRepo()
	svc := newClientService(repo)
	admin := activeUser("admin", domain.RoleAdmin)

	input := sampleCreateInput()
	input.Liabilities = []ports.LiabilityInput{
		{Creditor: "Visa"}, {Creditor: "Amex"}, {Creditor: "Discover"},
	}
	agg, err := svc.Create(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newLiabilities := []ports.LiabilityInput{{Creditor: "Chase", Balance: 900}}
	updated, err := svc.Update(context.Background(), admin, agg.Client.ID, ports.UpdateClientInput{
		Liabilities: &newLiabilities,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(updated.Liabilities) != 1 || updated.Liabilities[0].Creditor != "Chase" {
		t.Fatalf("liabilities after replace: %+v", updated.Liabilities)
	}
	if len(repo.liabilities) != 1 {
		t.Fatalf("old liabilities not deleted: %d remain", len(repo.liabilities))
	}
	if len(updated.Client.LiabilityIDs) != 1 {
		t.Fatalf("root reference list not rewritten: %v", updated.Client.LiabilityIDs)
	}
	// Untouched sections survive.
	if len(updated.Mortgages) != 1 {
		t.Fatalf("mortgages disturbed by liability replace: %d", len(updated.Mortgages))
	}
}

func TestClientService_Update_ScalarPatch(t *testing.T) {
	repo := newStubClientRepo()
	svc := newClientService(repo)
	admin := activeUser("admin", domain.RoleAdmin)

	agg, err := svc.Create(context.Background(), admin, sampleCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), admin, agg.Client.ClientCode, ports.UpdateClientInput{
		Status:       ptr(domain.StatusInactive),
		PayoffAmount: ptr(15000.0),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Client.Status != domain.StatusInactive || updated.Client.PayoffAmount != 15000 {
		t.Fatalf("scalars not patched: %+v", updated.Client)
	}
	if len(updated.Liabilities) != 2 {
		t.Fatalf("children disturbed by scalar patch")
	}
}

func TestClientService_Update_InvalidDriverRejectedBeforeTx(t *testing.T) {
	repo := newStubClientRepo()
	svc := newClientService(repo)
	admin := activeUser("admin", domain.RoleAdmin)

	agg, err := svc.Create(context.Background(), admin, sampleCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bad := []ports.DriverInput{{FullName: "Kid Driver", LicenseState: "CA", Age: 12}}
	if _, err := svc.Update(context.Background(), admin, agg.Client.ID, ports.UpdateClientInput{
		Drivers: &bad,
	}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	// Existing children untouched.
	if len(repo.liabilities) != 2 {
		t.Fatalf("liabilities disturbed: %d", len(repo.liabilities))
	}
}

func TestClientService_Delete(t *testing.T) {
	repo := newStubClientRepo()
	svc := newClientService(repo)
	admin := activeUser("admin", domain.RoleAdmin)

	input := sampleCreateInput()
	input.Drivers = []ports.DriverInput{{FullName: "Jane Doe", LicenseState: "CA", Age: 30}}
	agg, err := svc.Create(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), admin, agg.Client.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(repo.clients)+len(repo.applicants)+len(repo.liabilities)+
		len(repo.mortgages)+len(repo.underwritings)+len(repo.drivers) != 0 {
		t.Fatalf("aggregate not fully deleted")
	}
}

func TestClientService_AccessScoping(t *testing.T) {
	repo := newStubClientRepo()
	svc := newClientService(repo)
	admin := activeUser("admin", domain.RoleAdmin)
	bma := activeUser("bma", domain.RoleBMA)

	input := sampleCreateInput()
	input.ConsultantID = "CON-owner"
	agg, err := svc.Create(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(context.Background(), bma, agg.Client.ID); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission on foreign client, got %v", err)
	}

	// Listing is silently scoped to the actor's consultant id.
	clients, _, err := svc.List(context.Background(), bma, ports.ListClientsFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(clients) != 0 {
		t.Fatalf("non-admin sees foreign clients: %d", len(clients))
	}
}
