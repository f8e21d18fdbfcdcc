package service

import (
	"context"
	"errors"

	userserrors "karabook/internal/customers/errors"
	"karabook/internal/customers/repository"
	"karabook/pkg/config"
	apperrors "karabook/pkg/errors"
	"karabook/pkg/model"
	"karabook/pkg/sanitizer"
)

type CustomerService interface {
	GetAll(ctx context.Context) ([]*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, customer *model.User) error
}

type customerService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewCustomerService(repo repository.UserRepository, cfg *config.Config) CustomerService {
	return &customerService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *customerService) GetAll(ctx context.Context) ([]*model.User, error) {
	customers, err := s.repo.FindByRole(ctx, model.RoleUser)
	if err != nil {
		s.cfg.Log.Error("Failed to list customers", "error", err)
		return nil, apperrors.Internal("Failed to retrieve customers", err)
	}
	return customers, nil
}

func (s *customerService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Customer ID cannot be empty")
	}

	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, userserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Customer", id)
		case errors.Is(err, userserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid customer ID format")
		default:
			return nil, apperrors.Internal("Failed to retrieve customer", err)
		}
	}
	return customer, nil
}

// Create adds a walk-in customer record without credentials; self-service
// accounts go through auth registration instead.
func (s *customerService) Create(ctx context.Context, customer *model.User) error {
	customer.Name = sanitizer.NormalizeName(customer.Name)
	customer.Email = sanitizer.NormalizeEmail(customer.Email)
	customer.Role = model.RoleUser

	if customer.Name == "" || customer.Email == "" {
		return apperrors.Validation("Customer validation failed", map[string]any{
			"error": "name and email are required",
		})
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return apperrors.Conflict(userserrors.ErrDuplicateEmail.Error())
		}
		s.cfg.Log.Error("Failed to create customer", "error", err)
		return apperrors.Internal("Failed to create customer", err)
	}

	s.cfg.Log.Info("Customer created", "id", customer.ID)
	return nil
}
