package services

import (
	"context"
	"errors"
	"time"

	"kiranamart/internal/common"
	"kiranamart/internal/models"
	"kiranamart/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// ErrInvalidCredentials is returned for any login failure so the response
// never reveals whether the account exists.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrShopNotApproved is returned when a shop admin of an unapproved shop
// tries to log in.
var ErrShopNotApproved = errors.New("shop is awaiting approval")

// LoginResult carries the signed token plus the identity it encodes.
type LoginResult struct {
	Token   string     `json:"token"`
	Role    string     `json:"role"`
	ActorID uuid.UUID  `json:"actor_id"`
	ShopID  *uuid.UUID `json:"shop_id,omitempty"`
	Name    string     `json:"name"`
}

type AuthServiceInterface interface {
	LoginShopAdmin(ctx context.Context, email, password string) (*LoginResult, error)
	LoginSuperAdmin(ctx context.Context, email, password string) (*LoginResult, error)
	LoginCustomer(ctx context.Context, shopCode, phone, password string) (*LoginResult, error)
	ChangeShopAdminPassword(ctx context.Context, adminID uuid.UUID, currentPassword, newPassword string) error
}

type authService struct {
	adminRepo      repositories.ShopAdminRepository
	superAdminRepo repositories.SuperAdminRepository
	customerRepo   repositories.CustomerRepository
	shopRepo       repositories.ShopRepository
	jwtSecret      string
}

// NewAuthService creates a new auth service
func NewAuthService(adminRepo repositories.ShopAdminRepository, superAdminRepo repositories.SuperAdminRepository,
	customerRepo repositories.CustomerRepository, shopRepo repositories.ShopRepository, jwtSecret string) AuthServiceInterface {
	return &authService{
		adminRepo:      adminRepo,
		superAdminRepo: superAdminRepo,
		customerRepo:   customerRepo,
		shopRepo:       shopRepo,
		jwtSecret:      jwtSecret,
	}
}

func (s *authService) signToken(actorID uuid.UUID, role string, shopID *uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub":  actorID.String(),
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}
	if shopID != nil {
		claims["shop_id"] = shopID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) LoginShopAdmin(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if admin.Status != models.ShopStatusApproved {
		return nil, ErrShopNotApproved
	}

	token, err := s.signToken(admin.ID, common.RoleShopAdmin, &admin.ShopID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:   token,
		Role:    common.RoleShopAdmin,
		ActorID: admin.ID,
		ShopID:  &admin.ShopID,
		Name:    admin.Name,
	}, nil
}

func (s *authService) LoginSuperAdmin(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.superAdminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.signToken(admin.ID, common.RoleSuperAdmin, nil)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:   token,
		Role:    common.RoleSuperAdmin,
		ActorID: admin.ID,
	}, nil
}

// ChangeShopAdminPassword swaps a shop admin's password after re-checking
// the current one, so a stolen session cookie alone cannot lock the owner
// out.
func (s *authService) ChangeShopAdminPassword(ctx context.Context, adminID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return &ValidationError{Field: "new_password", Message: "must be at least 6 characters"}
	}

	admin, err := s.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidCredentials
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.adminRepo.UpdatePassword(ctx, adminID, string(hash))
}

// LoginCustomer authenticates against a shop picked by its 3-letter code,
// so a phone number shared across shops never collides.
func (s *authService) LoginCustomer(ctx context.Context, shopCode, phone, password string) (*LoginResult, error) {
	shop, err := s.shopRepo.GetByShopCode(ctx, shopCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if shop.Status != models.ShopStatusApproved {
		return nil, ErrShopNotApproved
	}

	customer, err := s.customerRepo.GetByPhone(ctx, shop.ID, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.signToken(customer.ID, common.RoleCustomer, &shop.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:   token,
		Role:    common.RoleCustomer,
		ActorID: customer.ID,
		ShopID:  &shop.ID,
		Name:    customer.Name,
	}, nil
}
