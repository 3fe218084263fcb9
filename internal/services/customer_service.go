package services

import (
	"context"
	"errors"
	"log"
	"time"

	"kiranamart/internal/caching"
	"kiranamart/internal/common"
	"kiranamart/internal/models"
	"kiranamart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const customerCacheTTL = 10 * time.Minute

type CustomerServiceInterface interface {
	CreateCustomer(ctx context.Context, customer *models.Customer, password string) error
	GetCustomer(ctx context.Context, shopID, customerID uuid.UUID) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, shopID, customerID uuid.UUID) error
	ListCustomers(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Customer, error)
	RecordPayment(ctx context.Context, shopID uuid.UUID, payment *models.Payment) error
	ListPayments(ctx context.Context, shopID, customerID uuid.UUID, limit, offset int) ([]*models.Payment, error)
}

type customerService struct {
	customerRepo repositories.CustomerRepository
	paymentRepo  repositories.PaymentRepository
	cache        caching.CacheService
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repositories.CustomerRepository, paymentRepo repositories.PaymentRepository, cache caching.CacheService) CustomerServiceInterface {
	return &customerService{
		customerRepo: customerRepo,
		paymentRepo:  paymentRepo,
		cache:        cache,
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, customer *models.Customer, password string) error {
	if err := common.ValidateRequiredString(customer.Name, "name"); err != nil {
		return &ValidationError{Field: "name", Message: err.Error()}
	}
	if err := common.ValidatePhone(customer.Phone, "phone"); err != nil {
		return &ValidationError{Field: "phone", Message: err.Error()}
	}
	if len(password) < 4 {
		return &ValidationError{Field: "password", Message: "must be at least 4 characters"}
	}

	existing, err := s.customerRepo.GetByPhone(ctx, customer.ShopID, customer.Phone)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if existing != nil {
		return &ConflictError{Message: "a customer with this phone already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	customer.PasswordHash = string(hash)

	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	customer.Balance = 0
	return s.customerRepo.Create(ctx, customer)
}

func (s *customerService) GetCustomer(ctx context.Context, shopID, customerID uuid.UUID) (*models.Customer, error) {
	if cached, err := s.cache.GetCustomer(ctx, shopID, customerID); err == nil && cached != nil {
		return cached, nil
	}

	customer, err := s.customerRepo.GetByID(ctx, shopID, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "customer"}
		}
		return nil, err
	}

	if err := s.cache.SetCustomer(ctx, shopID, customer, customerCacheTTL); err != nil {
		log.Printf("WARN: failed to cache customer %s: %v", customerID, err)
	}
	return customer, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := common.ValidateRequiredString(customer.Name, "name"); err != nil {
		return &ValidationError{Field: "name", Message: err.Error()}
	}
	if err := common.ValidatePhone(customer.Phone, "phone"); err != nil {
		return &ValidationError{Field: "phone", Message: err.Error()}
	}

	existing, err := s.customerRepo.GetByPhone(ctx, customer.ShopID, customer.Phone)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if existing != nil && existing.ID != customer.ID {
		return &ConflictError{Message: "a customer with this phone already exists"}
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return err
	}
	if err := s.cache.DeleteCustomer(ctx, customer.ShopID, customer.ID); err != nil {
		log.Printf("WARN: failed to invalidate customer cache %s: %v", customer.ID, err)
	}
	return nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, shopID, customerID uuid.UUID) error {
	customer, err := s.customerRepo.GetByID(ctx, shopID, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Resource: "customer"}
		}
		return err
	}
	if customer.Balance != 0 {
		return &ConflictError{Message: "customer has an outstanding balance"}
	}

	if err := s.customerRepo.Delete(ctx, shopID, customerID); err != nil {
		return err
	}
	if err := s.cache.DeleteCustomer(ctx, shopID, customerID); err != nil {
		log.Printf("WARN: failed to invalidate customer cache %s: %v", customerID, err)
	}
	return nil
}

func (s *customerService) ListCustomers(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	return s.customerRepo.List(ctx, shopID, limit, offset)
}

// RecordPayment registers money collected against a customer's ledger and
// decrements the balance atomically with the payment row.
func (s *customerService) RecordPayment(ctx context.Context, shopID uuid.UUID, payment *models.Payment) error {
	if payment.Amount <= 0 {
		return &ValidationError{Field: "amount", Message: "must be positive"}
	}
	if payment.Mode != models.PaymentCash && payment.Mode != models.PaymentOnline {
		return &ValidationError{Field: "mode", Message: "must be Cash or Online"}
	}

	if _, err := s.customerRepo.GetByID(ctx, shopID, payment.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Resource: "customer"}
		}
		return err
	}

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.ShopID = shopID

	if err := s.paymentRepo.Record(ctx, payment); err != nil {
		return err
	}
	// A payment moves both the customer's balance and the dashboard's
	// outstanding total, so sweep the whole shop's cache.
	if err := s.cache.InvalidateShopCache(ctx, shopID); err != nil {
		log.Printf("WARN: failed to invalidate shop cache %s: %v", shopID, err)
	}
	return nil
}

func (s *customerService) ListPayments(ctx context.Context, shopID, customerID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	return s.paymentRepo.ListByCustomer(ctx, shopID, customerID, limit, offset)
}
