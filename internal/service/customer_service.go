package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/rs/zerolog"
)

// --- DTOs ---

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	TaxID   string `json:"tax_id"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	TaxID   *string `json:"tax_id"`
}

type CustomerResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
	Revision  int    `json:"revision"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// --- Interface ---

type CustomerService interface {
	// GetCustomerByID is the lookup used when billing.
	GetCustomerByID(ctx context.Context, id uint) (*model.Customer, error)
	GetCustomer(ctx context.Context, id uint) (CustomerResponse, error)
	ListCustomers(ctx context.Context, page, limit int) ([]CustomerResponse, int64, error)
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (CustomerResponse, error)
	UpdateCustomer(ctx context.Context, id uint, req UpdateCustomerRequest) (CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id uint) error
}

type customerService struct {
	repo repository.CustomerRepository
	log  zerolog.Logger
}

func NewCustomerService(repo repository.CustomerRepository, log zerolog.Logger) CustomerService {
	return &customerService{repo: repo, log: log}
}

// --- Implementation ---

func (s *customerService) GetCustomerByID(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uint) (CustomerResponse, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) ListCustomers(ctx context.Context, page, limit int) ([]CustomerResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	customers, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}
	result := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		result = append(result, toCustomerResponse(c))
	}
	return result, total, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (CustomerResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CustomerResponse{}, apperror.Invalid("name", "is required")
	}
	customer := model.Customer{
		Name:     name,
		Address:  req.Address,
		Email:    req.Email,
		Phone:    req.Phone,
		TaxID:    req.TaxID,
		Revision: 1,
	}
	if err := s.repo.Create(ctx, &customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to create customer: %w", err)
	}
	s.log.Info().Uint("customer_id", customer.ID).Msg("Customer created")
	return toCustomerResponse(customer), nil
}

// UpdateCustomer stores a new revision. Invoices already issued keep the
// snapshot they were created with.
func (s *customerService) UpdateCustomer(ctx context.Context, id uint, req UpdateCustomerRequest) (CustomerResponse, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return CustomerResponse{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return CustomerResponse{}, apperror.Invalid("name", "must not be empty")
		}
		customer.Name = name
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.TaxID != nil {
		customer.TaxID = *req.TaxID
	}
	customer.Revision++

	if err := s.repo.Update(ctx, customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to update customer: %w", err)
	}
	s.log.Info().Uint("customer_id", customer.ID).Int("revision", customer.Revision).Msg("Customer updated")
	return toCustomerResponse(*customer), nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Uint("customer_id", id).Msg("Customer deleted")
	return nil
}

// --- Mapping ---

func toCustomerResponse(c model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		Email:     c.Email,
		Phone:     c.Phone,
		TaxID:     c.TaxID,
		Revision:  c.Revision,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
