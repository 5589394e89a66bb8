package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldstone/crm-system/internal/core/crypto"
	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

type stubSessionStore struct {
	sessions map[string][]string // userID -> session ids
	nextID   int
	now      time.Time
	expiry   map[string]time.Time // session id -> deadline
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{
		sessions: make(map[string][]string),
		expiry:   make(map[string]time.Time),
		now:      time.Unix(1_700_000_000, 0),
	}
}

func (s *stubSessionStore) Create(_ context.Context, userID string, ttl time.Duration) (string, error) {
	s.nextID++
	id := userID + ":" + strconv.Itoa(s.nextID)
	s.sessions[userID] = append(s.sessions[userID], id)
	s.expiry[id] = s.now.Add(ttl)
	return id, nil
}

func (s *stubSessionStore) HasValid(_ context.Context, userID string) (bool, error) {
	for _, id := range s.sessions[userID] {
		if s.now.Before(s.expiry[id]) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubSessionStore) Refresh(_ context.Context, userID string, ttl time.Duration) error {
	for _, id := range s.sessions[userID] {
		if s.now.Before(s.expiry[id]) {
			s.expiry[id] = s.now.Add(ttl)
		}
	}
	return nil
}

func (s *stubSessionStore) InvalidateUser(_ context.Context, userID string) error {
	for _, id := range s.sessions[userID] {
		delete(s.expiry, id)
	}
	delete(s.sessions, userID)
	return nil
}

type stubAuditSink struct {
	records []domain.AuditRecord
}

func (s *stubAuditSink) Record(rec domain.AuditRecord) {
	s.records = append(s.records, rec)
}

func (s *stubAuditSink) actions() []string {
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.Action
	}
	return out
}

type stubAuditRepo struct {
	records []*domain.AuditRecord
}

func (r *stubAuditRepo) Insert(_ context.Context, rec *domain.AuditRecord) error {
	clone := *rec
	r.records = append(r.records, &clone)
	return nil
}

func (r *stubAuditRepo) List(_ context.Context, filter ports.ListAuditFilter) ([]*domain.AuditRecord, int64, error) {
	var out []*domain.AuditRecord
	for _, rec := range r.records {
		if filter.Actor != "" && rec.Actor != filter.Actor {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

type stubSecuriaRepo struct {
	clients     map[string]*domain.SecuriaClient
	consultants map[string]*domain.SecuriaConsultant
	nextID      int
}

func newStubSecuriaRepo() *stubSecuriaRepo {
	return &stubSecuriaRepo{
		clients:     make(map[string]*domain.SecuriaClient),
		consultants: make(map[string]*domain.SecuriaConsultant),
	}
}

func (r *stubSecuriaRepo) CreateConsultant(_ context.Context, c *domain.SecuriaConsultant) (*domain.SecuriaConsultant, error) {
	r.nextID++
	clone := *c
	clone.ID = "scon-" + strconv.Itoa(r.nextID)
	r.consultants[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubSecuriaRepo) FindConsultant(_ context.Context, id string) (*domain.SecuriaConsultant, error) {
	c, ok := r.consultants[id]
	if !ok {
		return nil, domain.ErrSecuriaConsultantNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubSecuriaRepo) ListConsultants(_ context.Context, _, _ int) ([]*domain.SecuriaConsultant, int64, error) {
	var out []*domain.SecuriaConsultant
	for _, c := range r.consultants {
		clone := *c
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubSecuriaRepo) UpdateConsultant(_ context.Context, c *domain.SecuriaConsultant) error {
	if _, ok := r.consultants[c.ID]; !ok {
		return domain.ErrSecuriaConsultantNotFound
	}
	clone := *c
	r.consultants[c.ID] = &clone
	return nil
}

func (r *stubSecuriaRepo) DeleteConsultant(_ context.Context, id string) error {
	if _, ok := r.consultants[id]; !ok {
		return domain.ErrSecuriaConsultantNotFound
	}
	delete(r.consultants, id)
	return nil
}

func (r *stubSecuriaRepo) CreateClient(_ context.Context, c *domain.SecuriaClient) (*domain.SecuriaClient, error) {
	r.nextID++
	clone := *c
	clone.ID = "scli-" + strconv.Itoa(r.nextID)
	r.clients[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubSecuriaRepo) FindClient(_ context.Context, id string) (*domain.SecuriaClient, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrSecuriaClientNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubSecuriaRepo) ListClients(_ context.Context, _, _ int) ([]*domain.SecuriaClient, int64, error) {
	var out []*domain.SecuriaClient
	for _, c := range r.clients {
		clone := *c
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubSecuriaRepo) UpdateClient(_ context.Context, c *domain.SecuriaClient) error {
	if _, ok := r.clients[c.ID]; !ok {
		return domain.ErrSecuriaClientNotFound
	}
	clone := *c
	r.clients[c.ID] = &clone
	return nil
}

func (r *stubSecuriaRepo) DeleteClient(_ context.Context, id string) error {
	if _, ok := r.clients[id]; !ok {
		return domain.ErrSecuriaClientNotFound
	}
	delete(r.clients, id)
	return nil
}

type securiaFixture struct {
	svc      *SecuriaService
	users    *stubUserRepo
	repo     *stubSecuriaRepo
	sessions *stubSessionStore
	sink     *stubAuditSink
	admin    *domain.User
}

func newSecuriaFixture(t *testing.T) *securiaFixture {
	t.Helper()
	cipher, err := crypto.New("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}

	users := newStubUserRepo()
	admin := activeUser("admin", domain.RoleAdmin)
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret99"), bcrypt.MinCost)
	admin.PasswordHash = string(hash)
	users.seed(admin)

	repo := newStubSecuriaRepo()
	sessions := newStubSessionStore()
	sink := &stubAuditSink{}
	svc := NewSecuriaService(repo, users, sessions, sink, &stubAuditRepo{}, cipher, zerolog.Nop())

	return &securiaFixture{svc: svc, users: users, repo: repo, sessions: sessions, sink: sink, admin: admin}
}

func (f *securiaFixture) login(t *testing.T) {
	t.Helper()
	if _, err := f.svc.Reauthenticate(context.Background(), f.admin, "s3cret99", ports.RequestMeta{IP: "10.0.0.1"}); err != nil {
		t.Fatalf("Reauthenticate: %v", err)
	}
}

func TestSecuriaService_Reauthenticate(t *testing.T) {
	f := newSecuriaFixture(t)

	// Wrong password.
	if _, err := f.svc.Reauthenticate(context.Background(), f.admin, "nope", ports.RequestMeta{}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Non-admin actor.
	bma := activeUser("bma", domain.RoleBMA)
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret99"), bcrypt.MinCost)
	bma.PasswordHash = string(hash)
	f.users.seed(bma)
	if _, err := f.svc.Reauthenticate(context.Background(), bma, "s3cret99", ports.RequestMeta{}); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}

	// Success opens a session and writes an audit record.
	id, err := f.svc.Reauthenticate(context.Background(), f.admin, "s3cret99", ports.RequestMeta{IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Reauthenticate: %v", err)
	}
	if id == "" {
		t.Fatalf("empty session id")
	}
	ok, _ := f.svc.HasValidSession(context.Background(), f.admin.ID)
	if !ok {
		t.Fatalf("session not valid after reauth")
	}
	if len(f.sink.records) != 1 || f.sink.records[0].Action != "securia.login" {
		t.Fatalf("audit records: %v", f.sink.actions())
	}
	if f.sink.records[0].IP != "10.0.0.1" {
		t.Fatalf("request meta not recorded: %+v", f.sink.records[0])
	}
}

func TestSecuriaService_SessionGate(t *testing.T) {
	f := newSecuriaFixture(t)

	// Without a session every data operation is rejected.
	_, err := f.svc.CreateClient(context.Background(), f.admin, ports.SecuriaClientInput{
		FirstName: "Jane", LastName: "Doe",
	}, ports.RequestMeta{})
	if !errors.Is(err, domain.ErrSecuriaSessionRequired) {
		t.Fatalf("expected ErrSecuriaSessionRequired, got %v", err)
	}

	f.login(t)
	if _, err := f.svc.CreateClient(context.Background(), f.admin, ports.SecuriaClientInput{
		FirstName: "Jane", LastName: "Doe",
	}, ports.RequestMeta{}); err != nil {
		t.Fatalf("CreateClient with session: %v", err)
	}
}

func TestSecuriaService_SessionExpiry(t *testing.T) {
	f := newSecuriaFixture(t)
	f.login(t)

	// Just inside the timeout the session holds.
	f.sessions.now = f.sessions.now.Add(domain.SecuriaSessionTimeout - time.Minute)
	ok, _ := f.svc.HasValidSession(context.Background(), f.admin.ID)
	if !ok {
		t.Fatalf("session should still be valid before the timeout")
	}

	// A refresh slides the window.
	if err := f.svc.RefreshSession(context.Background(), f.admin.ID); err != nil {
		t.Fatalf("RefreshSession: %v", err)
	}
	f.sessions.now = f.sessions.now.Add(2 * time.Hour)
	ok, _ = f.svc.HasValidSession(context.Background(), f.admin.ID)
	if !ok {
		t.Fatalf("refreshed session expired too early")
	}

	// Past the timeout without refresh the session lapses.
	f.sessions.now = f.sessions.now.Add(domain.SecuriaSessionTimeout)
	ok, _ = f.svc.HasValidSession(context.Background(), f.admin.ID)
	if ok {
		t.Fatalf("session should have expired")
	}
}

func TestSecuriaService_Logout(t *testing.T) {
	f := newSecuriaFixture(t)
	f.login(t)

	if err := f.svc.Logout(context.Background(), f.admin, ports.RequestMeta{}); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	ok, _ := f.svc.HasValidSession(context.Background(), f.admin.ID)
	if ok {
		t.Fatalf("session survived logout")
	}
}

func TestSecuriaService_SSNLifecycle(t *testing.T) {
	f := newSecuriaFixture(t)
	f.login(t)

	created, err := f.svc.CreateClient(context.Background(), f.admin, ports.SecuriaClientInput{
		FirstName: "Jane", LastName: "Doe", SSN: "123-45-6789",
	}, ports.RequestMeta{})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if created.SSN != "***-**-6789" {
		t.Fatalf("create response should mask the ssn, got %q", created.SSN)
	}

	// At rest the SSN is ciphertext, not plaintext.
	stored := f.repo.clients[created.ID]
	if stored.SSN == "123-45-6789" || stored.SSN == "" {
		t.Fatalf("ssn not encrypted at rest: %q", stored.SSN)
	}

	// Single GET decrypts and audits the PII read.
	got, err := f.svc.GetClient(context.Background(), f.admin, created.ID, ports.RequestMeta{})
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.SSN != "123-45-6789" {
		t.Fatalf("GetClient ssn = %q", got.SSN)
	}
	found := false
	for _, rec := range f.sink.records {
		if rec.Action == "securia.client.view_pii" && rec.ResourceID == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("pii read not audited: %v", f.sink.actions())
	}

	// Lists carry masked SSNs only.
	list, _, err := f.svc.ListClients(context.Background(), f.admin, 1, 20, ports.RequestMeta{})
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(list) != 1 || list[0].SSN != "***-**-6789" {
		t.Fatalf("list ssn not masked: %+v", list)
	}
}

func TestSecuriaService_UpdateClient_KeepsSSNWhenOmitted(t *testing.T) {
	f := newSecuriaFixture(t)
	f.login(t)

	created, err := f.svc.CreateClient(context.Background(), f.admin, ports.SecuriaClientInput{
		FirstName: "Jane", LastName: "Doe", SSN: "123-45-6789",
	}, ports.RequestMeta{})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	if _, err := f.svc.UpdateClient(context.Background(), f.admin, created.ID, ports.SecuriaClientInput{
		FirstName: "Janet", LastName: "Doe",
	}, ports.RequestMeta{}); err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}

	got, err := f.svc.GetClient(context.Background(), f.admin, created.ID, ports.RequestMeta{})
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.FirstName != "Janet" || got.SSN != "123-45-6789" {
		t.Fatalf("update lost fields: %+v", got)
	}
}

func TestSecuriaService_AuditTrail(t *testing.T) {
	f := newSecuriaFixture(t)
	f.login(t)

	created, _ := f.svc.CreateClient(context.Background(), f.admin, ports.SecuriaClientInput{
		FirstName: "Jane", LastName: "Doe",
	}, ports.RequestMeta{})
	_ = f.svc.DeleteClient(context.Background(), f.admin, created.ID, ports.RequestMeta{})

	want := []string{"securia.login", "securia.client.create", "securia.client.delete"}
	got := f.sink.actions()
	if len(got) != len(want) {
		t.Fatalf("audit actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("audit actions = %v, want %v", got, want)
		}
	}
}
