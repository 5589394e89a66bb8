package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

type stubConsultantRepo struct {
	consultants map[string]*domain.Consultant
	nextID      int
}

func newStubConsultantRepo() *stubConsultantRepo {
	return &stubConsultantRepo{consultants: make(map[string]*domain.Consultant)}
}

func (r *stubConsultantRepo) Create(_ context.Context, c *domain.Consultant) (*domain.Consultant, error) {
	r.nextID++
	clone := *c
	clone.ID = "con-" + strconv.Itoa(r.nextID)
	r.consultants[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubConsultantRepo) FindByID(_ context.Context, id string) (*domain.Consultant, error) {
	c, ok := r.consultants[id]
	if !ok {
		return nil, domain.ErrConsultantNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubConsultantRepo) FindByCode(_ context.Context, code string) (*domain.Consultant, error) {
	for _, c := range r.consultants {
		if c.Code == code {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domain.ErrConsultantNotFound
}

func (r *stubConsultantRepo) List(_ context.Context, filter ports.ListConsultantsFilter) ([]*domain.Consultant, int64, error) {
	var out []*domain.Consultant
	for _, c := range r.consultants {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.FirstName+" "+c.LastName), strings.ToLower(filter.Search)) {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubConsultantRepo) Update(_ context.Context, c *domain.Consultant) error {
	if _, ok := r.consultants[c.ID]; !ok {
		return domain.ErrConsultantNotFound
	}
	clone := *c
	r.consultants[c.ID] = &clone
	return nil
}

func (r *stubConsultantRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.consultants[id]; !ok {
		return domain.ErrConsultantNotFound
	}
	delete(r.consultants, id)
	return nil
}

func newConsultantService() (*ConsultantService, *stubConsultantRepo) {
	repo := newStubConsultantRepo()
	return NewConsultantService(repo, newStubCounter(), zerolog.Nop()), repo
}

func TestConsultantService_CreateAssignsSequentialCodes(t *testing.T) {
	svc, _ := newConsultantService()
	actor := activeUser("adm", domain.RoleAdmin)

	for i := 1; i <= 3; i++ {
		c, err := svc.Create(context.Background(), actor, ports.ConsultantInput{
			FirstName: "Ann", LastName: "Lee",
		})
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		want := fmt.Sprintf("CON-%06d", i)
		if c.Code != want {
			t.Fatalf("code = %q, want %q", c.Code, want)
		}
		if c.Status != domain.StatusActive {
			t.Fatalf("default status = %q", c.Status)
		}
		if c.CreatedBy != "adm" || c.HireDate.IsZero() {
			t.Fatalf("audit fields: %+v", c)
		}
	}
}

func TestConsultantService_CreateValidation(t *testing.T) {
	svc, _ := newConsultantService()
	actor := activeUser("adm", domain.RoleAdmin)

	if _, err := svc.Create(context.Background(), actor, ports.ConsultantInput{LastName: "Lee"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("missing first name: %v", err)
	}
}

func TestConsultantService_GetByIDOrCode(t *testing.T) {
	svc, _ := newConsultantService()
	actor := activeUser("adm", domain.RoleAdmin)
	created, err := svc.Create(context.Background(), actor, ports.ConsultantInput{FirstName: "Ann", LastName: "Lee"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	byID, err := svc.Get(context.Background(), created.ID)
	if err != nil || byID.Code != created.Code {
		t.Fatalf("get by id: %v / %+v", err, byID)
	}
	byCode, err := svc.Get(context.Background(), created.Code)
	if err != nil || byCode.ID != created.ID {
		t.Fatalf("get by code: %v / %+v", err, byCode)
	}
	if _, err := svc.Get(context.Background(), "CON-999999"); !errors.Is(err, domain.ErrConsultantNotFound) {
		t.Fatalf("missing consultant: %v", err)
	}
}

func TestConsultantService_UpdatePatchesNonEmptyFields(t *testing.T) {
	svc, _ := newConsultantService()
	actor := activeUser("adm", domain.RoleAdmin)
	created, _ := svc.Create(context.Background(), actor, ports.ConsultantInput{
		FirstName: "Ann", LastName: "Lee", City: "Austin",
	})

	updated, err := svc.Update(context.Background(), actor, created.ID, ports.ConsultantInput{Phone: "555-0100"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Phone != "555-0100" || updated.FirstName != "Ann" || updated.City != "Austin" {
		t.Fatalf("patch semantics broken: %+v", updated)
	}
}

func TestConsultantService_ToggleStatus(t *testing.T) {
	svc, _ := newConsultantService()
	actor := activeUser("adm", domain.RoleAdmin)
	created, _ := svc.Create(context.Background(), actor, ports.ConsultantInput{FirstName: "Ann", LastName: "Lee"})

	c, err := svc.ToggleStatus(context.Background(), actor, created.ID)
	if err != nil || c.Status != domain.StatusInactive {
		t.Fatalf("first toggle: %v / %q", err, c.Status)
	}
	c, err = svc.ToggleStatus(context.Background(), actor, created.Code)
	if err != nil || c.Status != domain.StatusActive {
		t.Fatalf("second toggle: %v / %q", err, c.Status)
	}
}

func TestConsultantService_DeleteAdminOnly(t *testing.T) {
	svc, repo := newConsultantService()
	admin := activeUser("adm", domain.RoleAdmin)
	builder := activeUser("fb", domain.RoleFieldBuilder)
	created, _ := svc.Create(context.Background(), admin, ports.ConsultantInput{FirstName: "Ann", LastName: "Lee"})

	if err := svc.Delete(context.Background(), builder, created.ID); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("non-admin delete: %v", err)
	}
	if err := svc.Delete(context.Background(), admin, created.Code); err != nil {
		t.Fatalf("admin delete by code: %v", err)
	}
	if len(repo.consultants) != 0 {
		t.Fatalf("consultant not removed")
	}
}
