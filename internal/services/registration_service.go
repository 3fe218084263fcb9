package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kiranamart/internal/caching"
	"kiranamart/internal/common"
	"kiranamart/internal/jobs"
	"kiranamart/internal/models"
	"kiranamart/internal/repositories"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
	"golang.org/x/crypto/bcrypt"
)

// shopCodeCharset leaves out I and O, which read as 1 and 0 on a printed
// bill header.
const shopCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ"

const otpLength = 6

// OTP issuance throttle per email address.
const (
	otpRateLimit  = 3
	otpRateWindow = time.Hour
)

// AsynqClient is the slice of asynq.Client the services need; lets tests
// swap in a recorder.
type AsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RegisterShopRequest is the signup form payload.
type RegisterShopRequest struct {
	ShopName  string  `json:"shop_name"`
	OwnerName string  `json:"owner_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Password  string  `json:"password"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
}

// ShopDetail pairs a shop with its admin contact for the super-admin view.
type ShopDetail struct {
	Shop  *models.Shop      `json:"shop"`
	Admin *models.ShopAdmin `json:"admin"`
}

type RegistrationServiceInterface interface {
	RegisterShop(ctx context.Context, req *RegisterShopRequest) error
	VerifyOTP(ctx context.Context, email, otp string) (*models.Shop, error)
	ListPendingShops(ctx context.Context, limit, offset int) ([]*models.Shop, error)
	GetShopDetail(ctx context.Context, shopID string) (*ShopDetail, error)
	ApproveShop(ctx context.Context, shopID string) (*models.Shop, error)
	RejectShop(ctx context.Context, shopID string) (*models.Shop, error)
}

type registrationService struct {
	registrationRepo repositories.RegistrationRepository
	shopRepo         repositories.ShopRepository
	adminRepo        repositories.ShopAdminRepository
	cache            caching.CacheService
	asynqClient      AsynqClient
	otpTTL           time.Duration
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(registrationRepo repositories.RegistrationRepository, shopRepo repositories.ShopRepository,
	adminRepo repositories.ShopAdminRepository, cache caching.CacheService, asynqClient AsynqClient, otpTTL time.Duration) RegistrationServiceInterface {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &registrationService{
		registrationRepo: registrationRepo,
		shopRepo:         shopRepo,
		adminRepo:        adminRepo,
		cache:            cache,
		asynqClient:      asynqClient,
		otpTTL:           otpTTL,
	}
}

func otpKey(email string) string {
	return fmt.Sprintf("kiranamart:otp:%s", email)
}

// RegisterShop records a pending signup and mails a one-time code. Calling
// it again for the same email re-issues the code and refreshes the pending
// row, so an abandoned signup can simply start over.
func (s *registrationService) RegisterShop(ctx context.Context, req *RegisterShopRequest) error {
	if err := common.ValidateRequiredString(req.ShopName, "shop_name"); err != nil {
		return &ValidationError{Field: "shop_name", Message: err.Error()}
	}
	if err := common.ValidateRequiredString(req.OwnerName, "owner_name"); err != nil {
		return &ValidationError{Field: "owner_name", Message: err.Error()}
	}
	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return &ValidationError{Field: "email", Message: err.Error()}
	}
	if err := common.ValidatePhone(req.Phone, "phone"); err != nil {
		return &ValidationError{Field: "phone", Message: err.Error()}
	}
	if len(req.Password) < 6 {
		return &ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}

	limited, err := s.cache.IsRateLimited(ctx, "otp:"+req.Email, otpRateLimit, otpRateWindow)
	if err != nil {
		return err
	}
	if limited {
		return ErrRateLimited
	}

	if existing, err := s.adminRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return &ConflictError{Message: "an account with this email already exists"}
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if existing, err := s.shopRepo.GetByName(ctx, req.ShopName); err == nil && existing != nil {
		return &ConflictError{Message: "a shop with this name already exists"}
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	registration := &models.RegistrationRequest{
		ID:           uuid.New(),
		ShopName:     req.ShopName,
		OwnerName:    req.OwnerName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Status:       "pending",
	}
	if err := s.registrationRepo.UpsertPending(ctx, registration); err != nil {
		return err
	}

	otp := random.String(otpLength, random.Numeric)
	if err := s.cache.SetString(ctx, otpKey(req.Email), otp, s.otpTTL); err != nil {
		return err
	}

	task, err := jobs.NewOTPEmailTask(req.Email, req.OwnerName, otp)
	if err != nil {
		return err
	}
	if _, err := s.asynqClient.EnqueueContext(ctx, task); err != nil {
		return err
	}
	return nil
}

// VerifyOTP turns a pending signup into a real (still unapproved) shop
// plus its admin account.
func (s *registrationService) VerifyOTP(ctx context.Context, email, otp string) (*models.Shop, error) {
	stored, err := s.cache.GetString(ctx, otpKey(email))
	if err != nil {
		return nil, err
	}
	if stored == "" {
		return nil, &ValidationError{Field: "otp", Message: "code expired, request a new one"}
	}
	if stored != otp {
		return nil, &ValidationError{Field: "otp", Message: "incorrect code"}
	}

	registration, err := s.registrationRepo.GetPendingByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "registration request"}
		}
		return nil, err
	}

	number, err := s.shopRepo.NextShopNumber(ctx)
	if err != nil {
		return nil, err
	}
	shopID := fmt.Sprintf("SHOP%03d", number)

	shopCode, err := s.generateShopCode(ctx)
	if err != nil {
		return nil, err
	}

	shop := &models.Shop{
		ID:       uuid.New(),
		ShopID:   shopID,
		ShopCode: shopCode,
		Name:     registration.ShopName,
		Address:  registration.Address,
		City:     registration.City,
		State:    registration.State,
		Status:   models.ShopStatusPending,
	}
	if err := s.shopRepo.Create(ctx, shop); err != nil {
		return nil, err
	}

	admin := &models.ShopAdmin{
		ID:           uuid.New(),
		ShopID:       shop.ID,
		Name:         registration.OwnerName,
		Email:        registration.Email,
		Phone:        registration.Phone,
		PasswordHash: registration.PasswordHash,
		Status:       models.ShopStatusPending,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}

	if err := s.registrationRepo.MarkApproved(ctx, registration.ID, shopID, shopCode); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, otpKey(email)); err != nil {
		log.Printf("WARN: failed to clear OTP for %s: %v", email, err)
	}
	return shop, nil
}

// generateShopCode draws 3-letter codes until one is free. The space is
// ~13k codes, far above any realistic shop count, so a handful of draws
// always suffices.
func (s *registrationService) generateShopCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 20; attempt++ {
		code := random.String(3, shopCodeCharset)
		exists, err := s.shopRepo.ShopCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique shop code")
}

func (s *registrationService) ListPendingShops(ctx context.Context, limit, offset int) ([]*models.Shop, error) {
	return s.shopRepo.ListByStatus(ctx, models.ShopStatusPending, limit, offset)
}

// GetShopDetail resolves a shop by its human-readable id (SHOP007) along
// with the admin who runs it.
func (s *registrationService) GetShopDetail(ctx context.Context, shopID string) (*ShopDetail, error) {
	shop, err := s.shopRepo.GetByShopID(ctx, shopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "shop"}
		}
		return nil, err
	}

	admin, err := s.adminRepo.GetByShopID(ctx, shop.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return &ShopDetail{Shop: shop, Admin: admin}, nil
}

func (s *registrationService) ApproveShop(ctx context.Context, shopID string) (*models.Shop, error) {
	shop, err := s.shopRepo.UpdateStatus(ctx, shopID, models.ShopStatusPending, models.ShopStatusApproved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ConflictError{Message: "shop is not pending approval"}
		}
		return nil, err
	}

	admin, err := s.adminRepo.UpdateStatusByShopID(ctx, shop.ID, models.ShopStatusPending, models.ShopStatusApproved)
	if err != nil {
		return nil, err
	}

	task, err := jobs.NewShopApprovedEmailTask(admin.Email, admin.Name, shop.Name, shop.ShopCode)
	if err != nil {
		return nil, err
	}
	if _, err := s.asynqClient.EnqueueContext(ctx, task); err != nil {
		log.Printf("WARN: failed to enqueue approval mail for shop %s: %v", shop.ID, err)
	}
	return shop, nil
}

func (s *registrationService) RejectShop(ctx context.Context, shopID string) (*models.Shop, error) {
	shop, err := s.shopRepo.UpdateStatus(ctx, shopID, models.ShopStatusPending, models.ShopStatusRejected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ConflictError{Message: "shop is not pending approval"}
		}
		return nil, err
	}

	if _, err := s.adminRepo.UpdateStatusByShopID(ctx, shop.ID, models.ShopStatusPending, models.ShopStatusRejected); err != nil {
		return nil, err
	}
	return shop, nil
}
