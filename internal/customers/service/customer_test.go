package service

import (
	"context"
	"io"
	"sync"
	"testing"

	userserrors "karabook/internal/customers/errors"
	"karabook/pkg/config"
	apperrors "karabook/pkg/errors"
	"karabook/pkg/logger"
	"karabook/pkg/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}

type memoryUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*model.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*model.User)}
}

func (m *memoryUserRepo) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return userserrors.ErrDuplicateEmail
		}
	}
	m.nextID++
	user.ID = testObjectID(m.nextID)
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (m *memoryUserRepo) FindByRole(ctx context.Context, role string) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		if u.Role == role {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memoryUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok, nil
}

func (m *memoryUserRepo) FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*model.User)
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			clone := *u
			out[id] = &clone
		}
	}
	return out, nil
}

func testObjectID(n int) string {
	const hexDigits = "0123456789abcdef"
	id := make([]byte, 24)
	for i := range id {
		id[i] = '0'
	}
	for i := 23; n > 0 && i >= 0; i-- {
		id[i] = hexDigits[n%16]
		n /= 16
	}
	return string(id)
}

func TestCreateCustomer(t *testing.T) {
	svc := NewCustomerService(newMemoryUserRepo(), testConfig())
	ctx := context.Background()

	customer := &model.User{Name: "  Mei   Sato ", Email: " MEI@Example.com ", Role: model.RoleAdmin}
	if err := svc.Create(ctx, customer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if customer.Name != "Mei Sato" {
		t.Errorf("expected normalized name, got %q", customer.Name)
	}
	if customer.Email != "mei@example.com" {
		t.Errorf("expected normalized email, got %q", customer.Email)
	}
	// Walk-in customer creation never grants elevated roles.
	if customer.Role != model.RoleUser {
		t.Errorf("expected role forced to %q, got %q", model.RoleUser, customer.Role)
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	svc := NewCustomerService(newMemoryUserRepo(), testConfig())
	ctx := context.Background()

	if err := svc.Create(ctx, &model.User{Name: "Mei", Email: "mei@example.com"}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	err := svc.Create(ctx, &model.User{Name: "Other", Email: "mei@example.com"})
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateCustomer_Validation(t *testing.T) {
	svc := NewCustomerService(newMemoryUserRepo(), testConfig())
	ctx := context.Background()

	for _, customer := range []*model.User{
		{Email: "a@example.com"},
		{Name: "A"},
		{},
	} {
		err := svc.Create(ctx, customer)
		if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
			t.Errorf("expected validation error for %+v, got %v", customer, err)
		}
	}
}

func TestGetAllCustomers_FiltersByRole(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewCustomerService(repo, testConfig())
	ctx := context.Background()

	if err := svc.Create(ctx, &model.User{Name: "Mei", Email: "mei@example.com"}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	admin := &model.User{Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin}
	if err := repo.Create(ctx, admin); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	customers, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(customers) != 1 {
		t.Fatalf("expected only the customer-role user, got %d", len(customers))
	}
	if customers[0].Email != "mei@example.com" {
		t.Errorf("wrong user listed: %s", customers[0].Email)
	}
}

func TestGetCustomerByID(t *testing.T) {
	svc := NewCustomerService(newMemoryUserRepo(), testConfig())
	ctx := context.Background()

	customer := &model.User{Name: "Mei", Email: "mei@example.com"}
	if err := svc.Create(ctx, customer); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	found, err := svc.GetByID(ctx, customer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Email != "mei@example.com" {
		t.Errorf("wrong customer: %s", found.Email)
	}

	_, err = svc.GetByID(ctx, testObjectID(0x77))
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}

	_, err = svc.GetByID(ctx, "")
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}
