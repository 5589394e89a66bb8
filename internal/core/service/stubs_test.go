package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

// In-memory stand-ins for the persistence ports, shared by the service
// tests in this package.

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	if u.ID == "" {
		r.nextID++
		u.ID = "user-" + strconv.Itoa(r.nextID)
	}
	r.users[u.ID] = cloneUser(u)
	return cloneUser(u)
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	for _, u := range r.users {
		if u.ConsultantID == user.ConsultantID {
			return nil, domain.ErrConsultantIDTaken
		}
	}
	return r.seed(cloneUser(user)), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByConsultantID(_ context.Context, consultantID string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ConsultantID == consultantID {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(u.Email, filter.Search) {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubCounter struct {
	seq map[string]int64
}

func newStubCounter() *stubCounter {
	return &stubCounter{seq: make(map[string]int64)}
}

func (c *stubCounter) Next(_ context.Context, name string) (int64, error) {
	c.seq[name]++
	return c.seq[name], nil
}

// activeUser builds a user that passes status validation.
func activeUser(id, role string) *domain.User {
	u := &domain.User{
		ID:           id,
		ConsultantID: "CON-" + id,
		FirstName:    "Test",
		LastName:     "User",
		Email:        fmt.Sprintf("%s@example.com", id),
		IsActive:     true,
		Status:       domain.StatusActive,
	}
	u.SetRole(role)
	return u
}
