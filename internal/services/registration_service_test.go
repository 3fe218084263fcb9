package services

import (
	"context"
	"testing"
	"time"

	"kiranamart/internal/jobs"
	"kiranamart/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) UpsertPending(ctx context.Context, req *models.RegistrationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRegistrationRepository) GetPendingByEmail(ctx context.Context, email string) (*models.RegistrationRequest, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegistrationRequest), args.Error(1)
}

func (m *MockRegistrationRepository) MarkApproved(ctx context.Context, id uuid.UUID, shopID, shopCode string) error {
	args := m.Called(ctx, id, shopID, shopCode)
	return args.Error(0)
}

type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) Create(ctx context.Context, shop *models.Shop) error {
	args := m.Called(ctx, shop)
	return args.Error(0)
}

func (m *MockShopRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

func (m *MockShopRepository) GetByShopID(ctx context.Context, shopID string) (*models.Shop, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

func (m *MockShopRepository) GetByShopCode(ctx context.Context, shopCode string) (*models.Shop, error) {
	args := m.Called(ctx, shopCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

func (m *MockShopRepository) GetByName(ctx context.Context, name string) (*models.Shop, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

func (m *MockShopRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Shop, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.Shop), args.Error(1)
}

func (m *MockShopRepository) UpdateStatus(ctx context.Context, shopID, fromStatus, toStatus string) (*models.Shop, error) {
	args := m.Called(ctx, shopID, fromStatus, toStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shop), args.Error(1)
}

func (m *MockShopRepository) UpdateLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error {
	args := m.Called(ctx, id, logoURL)
	return args.Error(0)
}

func (m *MockShopRepository) NextShopNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShopRepository) ShopCodeExists(ctx context.Context, shopCode string) (bool, error) {
	args := m.Called(ctx, shopCode)
	return args.Bool(0), args.Error(1)
}

type MockShopAdminRepository struct {
	mock.Mock
}

func (m *MockShopAdminRepository) Create(ctx context.Context, admin *models.ShopAdmin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockShopAdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ShopAdmin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShopAdmin), args.Error(1)
}

func (m *MockShopAdminRepository) GetByEmail(ctx context.Context, email string) (*models.ShopAdmin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShopAdmin), args.Error(1)
}

func (m *MockShopAdminRepository) GetByShopID(ctx context.Context, shopID uuid.UUID) (*models.ShopAdmin, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShopAdmin), args.Error(1)
}

func (m *MockShopAdminRepository) UpdateStatusByShopID(ctx context.Context, shopID uuid.UUID, fromStatus, toStatus string) (*models.ShopAdmin, error) {
	args := m.Called(ctx, shopID, fromStatus, toStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShopAdmin), args.Error(1)
}

func (m *MockShopAdminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

type RegistrationServiceTestSuite struct {
	suite.Suite
	registrationRepo *MockRegistrationRepository
	shopRepo         *MockShopRepository
	adminRepo        *MockShopAdminRepository
	cache            *MockCacheService
	asynqClient      *MockAsynqClient
	service          RegistrationServiceInterface
	ctx              context.Context
}

func (suite *RegistrationServiceTestSuite) SetupTest() {
	suite.registrationRepo = new(MockRegistrationRepository)
	suite.shopRepo = new(MockShopRepository)
	suite.adminRepo = new(MockShopAdminRepository)
	suite.cache = new(MockCacheService)
	suite.asynqClient = new(MockAsynqClient)
	suite.service = NewRegistrationService(suite.registrationRepo, suite.shopRepo, suite.adminRepo,
		suite.cache, suite.asynqClient, 10*time.Minute)
	suite.ctx = context.Background()
}

func TestRegistrationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RegistrationServiceTestSuite))
}

func (suite *RegistrationServiceTestSuite) TestRegisterShop_IssuesOTP() {
	suite.cache.On("IsRateLimited", suite.ctx, "otp:owner@example.com", otpRateLimit, otpRateWindow).Return(false, nil)
	suite.adminRepo.On("GetByEmail", suite.ctx, "owner@example.com").Return(nil, pgx.ErrNoRows)
	suite.shopRepo.On("GetByName", suite.ctx, "Sharma Kirana Store").Return(nil, pgx.ErrNoRows)
	suite.registrationRepo.On("UpsertPending", suite.ctx, mock.AnythingOfType("*models.RegistrationRequest")).Return(nil)

	var issuedOTP string
	suite.cache.On("SetString", suite.ctx, "kiranamart:otp:owner@example.com", mock.AnythingOfType("string"), 10*time.Minute).
		Run(func(args mock.Arguments) {
			issuedOTP = args.String(2)
		}).
		Return(nil)
	suite.asynqClient.On("EnqueueContext", suite.ctx, mock.AnythingOfType("*asynq.Task")).
		Return(&asynq.TaskInfo{}, nil)

	err := suite.service.RegisterShop(suite.ctx, &RegisterShopRequest{
		ShopName:  "Sharma Kirana Store",
		OwnerName: "Ramesh Sharma",
		Email:     "owner@example.com",
		Phone:     "9876543210",
		Password:  "secret123",
	})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), issuedOTP, otpLength)

	task := suite.asynqClient.Calls[0].Arguments.Get(1).(*asynq.Task)
	assert.Equal(suite.T(), jobs.TypeOTPEmail, task.Type())
}

func (suite *RegistrationServiceTestSuite) TestRegisterShop_EmailTaken() {
	suite.cache.On("IsRateLimited", suite.ctx, "otp:owner@example.com", otpRateLimit, otpRateWindow).Return(false, nil)
	suite.adminRepo.On("GetByEmail", suite.ctx, "owner@example.com").
		Return(&models.ShopAdmin{ID: uuid.New(), Email: "owner@example.com"}, nil)

	err := suite.service.RegisterShop(suite.ctx, &RegisterShopRequest{
		ShopName:  "Sharma Kirana Store",
		OwnerName: "Ramesh Sharma",
		Email:     "owner@example.com",
		Phone:     "9876543210",
		Password:  "secret123",
	})
	var cErr *ConflictError
	assert.ErrorAs(suite.T(), err, &cErr)
	suite.registrationRepo.AssertNotCalled(suite.T(), "UpsertPending", mock.Anything, mock.Anything)
}

func (suite *RegistrationServiceTestSuite) TestRegisterShop_ShopNameTaken() {
	suite.cache.On("IsRateLimited", suite.ctx, "otp:owner@example.com", otpRateLimit, otpRateWindow).Return(false, nil)
	suite.adminRepo.On("GetByEmail", suite.ctx, "owner@example.com").Return(nil, pgx.ErrNoRows)
	suite.shopRepo.On("GetByName", suite.ctx, "Sharma Kirana Store").
		Return(&models.Shop{ID: uuid.New(), Name: "Sharma Kirana Store"}, nil)

	err := suite.service.RegisterShop(suite.ctx, &RegisterShopRequest{
		ShopName:  "Sharma Kirana Store",
		OwnerName: "Ramesh Sharma",
		Email:     "owner@example.com",
		Phone:     "9876543210",
		Password:  "secret123",
	})
	var cErr *ConflictError
	assert.ErrorAs(suite.T(), err, &cErr)
	suite.registrationRepo.AssertNotCalled(suite.T(), "UpsertPending", mock.Anything, mock.Anything)
}

func (suite *RegistrationServiceTestSuite) TestRegisterShop_Throttled() {
	suite.cache.On("IsRateLimited", suite.ctx, "otp:owner@example.com", otpRateLimit, otpRateWindow).Return(true, nil)

	err := suite.service.RegisterShop(suite.ctx, &RegisterShopRequest{
		ShopName:  "Sharma Kirana Store",
		OwnerName: "Ramesh Sharma",
		Email:     "owner@example.com",
		Phone:     "9876543210",
		Password:  "secret123",
	})
	assert.ErrorIs(suite.T(), err, ErrRateLimited)
	suite.registrationRepo.AssertNotCalled(suite.T(), "UpsertPending", mock.Anything, mock.Anything)
	suite.asynqClient.AssertNotCalled(suite.T(), "EnqueueContext", mock.Anything, mock.Anything)
}

func (suite *RegistrationServiceTestSuite) TestGetShopDetail() {
	shopUUID := uuid.New()
	shop := &models.Shop{ID: shopUUID, ShopID: "SHOP007", Name: "Sharma Kirana Store"}
	admin := &models.ShopAdmin{ID: uuid.New(), ShopID: shopUUID, Name: "Ramesh Sharma", Email: "owner@example.com"}

	suite.shopRepo.On("GetByShopID", suite.ctx, "SHOP007").Return(shop, nil)
	suite.adminRepo.On("GetByShopID", suite.ctx, shopUUID).Return(admin, nil)

	detail, err := suite.service.GetShopDetail(suite.ctx, "SHOP007")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), shop, detail.Shop)
	assert.Equal(suite.T(), admin, detail.Admin)
}

func (suite *RegistrationServiceTestSuite) TestGetShopDetail_UnknownShop() {
	suite.shopRepo.On("GetByShopID", suite.ctx, "SHOP999").Return(nil, pgx.ErrNoRows)

	_, err := suite.service.GetShopDetail(suite.ctx, "SHOP999")
	var nfErr *NotFoundError
	assert.ErrorAs(suite.T(), err, &nfErr)
	assert.Equal(suite.T(), "shop", nfErr.Resource)
}

func (suite *RegistrationServiceTestSuite) TestVerifyOTP_WrongCode() {
	suite.cache.On("GetString", suite.ctx, "kiranamart:otp:owner@example.com").Return("123456", nil)

	_, err := suite.service.VerifyOTP(suite.ctx, "owner@example.com", "654321")
	var vErr *ValidationError
	assert.ErrorAs(suite.T(), err, &vErr)
	assert.Equal(suite.T(), "otp", vErr.Field)
	suite.shopRepo.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *RegistrationServiceTestSuite) TestVerifyOTP_Expired() {
	// Redis TTL elapsed: the key is gone.
	suite.cache.On("GetString", suite.ctx, "kiranamart:otp:owner@example.com").Return("", nil)

	_, err := suite.service.VerifyOTP(suite.ctx, "owner@example.com", "123456")
	var vErr *ValidationError
	assert.ErrorAs(suite.T(), err, &vErr)
	assert.Contains(suite.T(), vErr.Message, "expired")
}

func (suite *RegistrationServiceTestSuite) TestVerifyOTP_CreatesShopAndAdmin() {
	registration := &models.RegistrationRequest{
		ID:           uuid.New(),
		ShopName:     "Sharma Kirana Store",
		OwnerName:    "Ramesh Sharma",
		Email:        "owner@example.com",
		Phone:        "9876543210",
		PasswordHash: "$2a$10$hash",
		Status:       "pending",
	}

	suite.cache.On("GetString", suite.ctx, "kiranamart:otp:owner@example.com").Return("123456", nil)
	suite.registrationRepo.On("GetPendingByEmail", suite.ctx, "owner@example.com").Return(registration, nil)
	suite.shopRepo.On("NextShopNumber", suite.ctx).Return(int64(7), nil)
	suite.shopRepo.On("ShopCodeExists", suite.ctx, mock.AnythingOfType("string")).Return(false, nil)
	suite.shopRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Shop")).Return(nil)
	suite.adminRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.ShopAdmin")).Return(nil)
	suite.registrationRepo.On("MarkApproved", suite.ctx, registration.ID, "SHOP007", mock.AnythingOfType("string")).Return(nil)
	suite.cache.On("Delete", suite.ctx, "kiranamart:otp:owner@example.com").Return(nil)

	shop, err := suite.service.VerifyOTP(suite.ctx, "owner@example.com", "123456")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "SHOP007", shop.ShopID)
	assert.Len(suite.T(), shop.ShopCode, 3)
	assert.NotContains(suite.T(), shop.ShopCode, "I")
	assert.NotContains(suite.T(), shop.ShopCode, "O")
	assert.Equal(suite.T(), models.ShopStatusPending, shop.Status)

	admin := suite.adminRepo.Calls[0].Arguments.Get(1).(*models.ShopAdmin)
	assert.Equal(suite.T(), shop.ID, admin.ShopID)
	assert.Equal(suite.T(), registration.PasswordHash, admin.PasswordHash)
	assert.Equal(suite.T(), models.ShopStatusPending, admin.Status)
}

func (suite *RegistrationServiceTestSuite) TestApproveShop_FlipsStatusesAndMails() {
	shopUUID := uuid.New()
	shop := &models.Shop{ID: shopUUID, ShopID: "SHOP007", ShopCode: "KDM", Name: "Sharma Kirana Store", Status: models.ShopStatusApproved}
	admin := &models.ShopAdmin{ID: uuid.New(), ShopID: shopUUID, Name: "Ramesh Sharma", Email: "owner@example.com", Status: models.ShopStatusApproved}

	suite.shopRepo.On("UpdateStatus", suite.ctx, "SHOP007", models.ShopStatusPending, models.ShopStatusApproved).Return(shop, nil)
	suite.adminRepo.On("UpdateStatusByShopID", suite.ctx, shopUUID, models.ShopStatusPending, models.ShopStatusApproved).Return(admin, nil)
	suite.asynqClient.On("EnqueueContext", suite.ctx, mock.AnythingOfType("*asynq.Task")).
		Return(&asynq.TaskInfo{}, nil)

	got, err := suite.service.ApproveShop(suite.ctx, "SHOP007")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), shop, got)

	task := suite.asynqClient.Calls[0].Arguments.Get(1).(*asynq.Task)
	assert.Equal(suite.T(), jobs.TypeShopApprovedEmail, task.Type())
}

func (suite *RegistrationServiceTestSuite) TestApproveShop_NotPending() {
	suite.shopRepo.On("UpdateStatus", suite.ctx, "SHOP007", models.ShopStatusPending, models.ShopStatusApproved).
		Return(nil, pgx.ErrNoRows)

	_, err := suite.service.ApproveShop(suite.ctx, "SHOP007")
	var cErr *ConflictError
	assert.ErrorAs(suite.T(), err, &cErr)
}
