package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"kiranamart/internal/billing"
	"kiranamart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Mock repositories
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Settle(ctx context.Context, sale *models.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Sale, error) {
	args := m.Called(ctx, shopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sale), args.Error(1)
}

func (m *MockSaleRepository) List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Sale, error) {
	args := m.Called(ctx, shopID, limit, offset)
	return args.Get(0).([]*models.Sale), args.Error(1)
}

func (m *MockSaleRepository) ListByCustomer(ctx context.Context, shopID, customerID uuid.UUID, limit, offset int) ([]*models.Sale, error) {
	args := m.Called(ctx, shopID, customerID, limit, offset)
	return args.Get(0).([]*models.Sale), args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, shopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) GetByName(ctx context.Context, shopID uuid.UUID, name string) (*models.Item, error) {
	args := m.Called(ctx, shopID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	args := m.Called(ctx, shopID, id)
	return args.Error(0)
}

func (m *MockItemRepository) List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Item, error) {
	args := m.Called(ctx, shopID, limit, offset)
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) ListLowStock(ctx context.Context, shopID uuid.UUID) ([]*models.Item, error) {
	args := m.Called(ctx, shopID)
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemRepository) CountSaleReferences(ctx context.Context, shopID, itemID uuid.UUID) (int64, error) {
	args := m.Called(ctx, shopID, itemID)
	return args.Get(0).(int64), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, shopID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetByPhone(ctx context.Context, shopID uuid.UUID, phone string) (*models.Customer, error) {
	args := m.Called(ctx, shopID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	args := m.Called(ctx, shopID, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	args := m.Called(ctx, shopID, limit, offset)
	return args.Get(0).([]*models.Customer), args.Error(1)
}

type SettlementServiceTestSuite struct {
	suite.Suite
	saleRepo     *MockSaleRepository
	itemRepo     *MockItemRepository
	customerRepo *MockCustomerRepository
	service      SettlementServiceInterface
	shopID       uuid.UUID
	customerID   uuid.UUID
	itemID       uuid.UUID
	ctx          context.Context
}

func (suite *SettlementServiceTestSuite) SetupTest() {
	suite.saleRepo = new(MockSaleRepository)
	suite.itemRepo = new(MockItemRepository)
	suite.customerRepo = new(MockCustomerRepository)
	suite.service = NewSettlementService(suite.saleRepo, suite.itemRepo, suite.customerRepo, billing.Options{})
	suite.shopID = uuid.New()
	suite.customerID = uuid.New()
	suite.itemID = uuid.New()
	suite.ctx = context.Background()
}

func TestSettlementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementServiceTestSuite))
}

func (suite *SettlementServiceTestSuite) sampleRequest() *SettleRequest {
	return &SettleRequest{
		CustomerID: suite.customerID,
		Items: []SettleLine{
			{
				ItemID:   suite.itemID,
				Name:     "Basmati Rice",
				HSNCode:  "1006",
				Quantity: 2,
				Unit:     "Kg",
				Rate:     100,
				TaxType:  billing.TaxExclusive,
				GSTRate:  18,
			},
		},
		PaymentMode: models.PaymentCash,
	}
}

func (suite *SettlementServiceTestSuite) expectLookupsOK() {
	suite.customerRepo.On("GetByID", suite.ctx, suite.shopID, suite.customerID).
		Return(&models.Customer{ID: suite.customerID, ShopID: suite.shopID, Name: "Ravi"}, nil)
	suite.itemRepo.On("GetByID", suite.ctx, suite.shopID, suite.itemID).
		Return(&models.Item{ID: suite.itemID, ShopID: suite.shopID, Name: "Basmati Rice"}, nil)
}

func (suite *SettlementServiceTestSuite) TestSettle_RecomputesTotals() {
	suite.expectLookupsOK()
	suite.saleRepo.On("Settle", suite.ctx, mock.AnythingOfType("*models.Sale")).
		Run(func(args mock.Arguments) {
			sale := args.Get(1).(*models.Sale)
			sale.BillNumber = "INV-2501"
		}).
		Return(nil)

	sale, err := suite.service.Settle(suite.ctx, suite.shopID, suite.sampleRequest())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-2501", sale.BillNumber)
	assert.Equal(suite.T(), 200.0, sale.TotalTaxableValue)
	assert.Equal(suite.T(), 36.0, sale.TotalGST)
	assert.Equal(suite.T(), 18.0, sale.TotalCGST)
	assert.Equal(suite.T(), 18.0, sale.TotalSGST)
	assert.Equal(suite.T(), 236.0, sale.GrandTotal)
	assert.Equal(suite.T(), 0.0, sale.RoundOff)
	assert.Equal(suite.T(), "Two Hundred and Thirty Six Rupees Only", sale.AmountInWords)
	assert.Equal(suite.T(), models.DefaultBillType, sale.BillType)
	assert.Len(suite.T(), sale.Items, 1)
	assert.Equal(suite.T(), 236.0, sale.Items[0].NetAmount)
	suite.saleRepo.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestSettle_EmptyCart() {
	req := suite.sampleRequest()
	req.Items = nil

	_, err := suite.service.Settle(suite.ctx, suite.shopID, req)
	var vErr *ValidationError
	assert.ErrorAs(suite.T(), err, &vErr)
	assert.Equal(suite.T(), "items", vErr.Field)
	suite.saleRepo.AssertNotCalled(suite.T(), "Settle", mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestSettle_MissingCustomer() {
	req := suite.sampleRequest()
	req.CustomerID = uuid.Nil

	_, err := suite.service.Settle(suite.ctx, suite.shopID, req)
	var vErr *ValidationError
	assert.ErrorAs(suite.T(), err, &vErr)
	assert.Equal(suite.T(), "customer_id", vErr.Field)
}

func (suite *SettlementServiceTestSuite) TestSettle_BadPaymentMode() {
	req := suite.sampleRequest()
	req.PaymentMode = "Barter"

	_, err := suite.service.Settle(suite.ctx, suite.shopID, req)
	var vErr *ValidationError
	assert.ErrorAs(suite.T(), err, &vErr)
	assert.Equal(suite.T(), "payment_mode", vErr.Field)
}

func (suite *SettlementServiceTestSuite) TestSettle_NegativeQuantity() {
	req := suite.sampleRequest()
	req.Items[0].Quantity = -1

	_, err := suite.service.Settle(suite.ctx, suite.shopID, req)
	var vErr *ValidationError
	assert.ErrorAs(suite.T(), err, &vErr)
}

func (suite *SettlementServiceTestSuite) TestSettle_CustomerNotFound() {
	suite.customerRepo.On("GetByID", suite.ctx, suite.shopID, suite.customerID).
		Return(nil, pgx.ErrNoRows)

	_, err := suite.service.Settle(suite.ctx, suite.shopID, suite.sampleRequest())
	var nfErr *NotFoundError
	assert.ErrorAs(suite.T(), err, &nfErr)
	assert.Equal(suite.T(), "customer", nfErr.Resource)
	suite.saleRepo.AssertNotCalled(suite.T(), "Settle", mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestSettle_ItemNotFound() {
	suite.customerRepo.On("GetByID", suite.ctx, suite.shopID, suite.customerID).
		Return(&models.Customer{ID: suite.customerID}, nil)
	suite.itemRepo.On("GetByID", suite.ctx, suite.shopID, suite.itemID).
		Return(nil, pgx.ErrNoRows)

	_, err := suite.service.Settle(suite.ctx, suite.shopID, suite.sampleRequest())
	var nfErr *NotFoundError
	assert.ErrorAs(suite.T(), err, &nfErr)
	assert.Equal(suite.T(), "item", nfErr.Resource)
	suite.saleRepo.AssertNotCalled(suite.T(), "Settle", mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestSettle_FillsUnitFromCatalog() {
	suite.customerRepo.On("GetByID", suite.ctx, suite.shopID, suite.customerID).
		Return(&models.Customer{ID: suite.customerID, ShopID: suite.shopID, Name: "Ravi"}, nil)
	suite.itemRepo.On("GetByID", suite.ctx, suite.shopID, suite.itemID).
		Return(&models.Item{
			ID:     suite.itemID,
			ShopID: suite.shopID,
			Name:   "Basmati Rice",
			Unit:   models.Unit{BaseUnit: "Kg"},
		}, nil)
	suite.saleRepo.On("Settle", suite.ctx, mock.AnythingOfType("*models.Sale")).Return(nil)

	req := suite.sampleRequest()
	req.Items[0].Unit = ""

	sale, err := suite.service.Settle(suite.ctx, suite.shopID, req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Kg", sale.Items[0].Unit)
}

func (suite *SettlementServiceTestSuite) TestSettle_IdempotentRetry() {
	saleID := uuid.New()
	existing := &models.Sale{ID: saleID, ShopID: suite.shopID, BillNumber: "INV-2507", GrandTotal: 236}
	suite.saleRepo.On("GetByID", suite.ctx, suite.shopID, saleID).Return(existing, nil)

	req := suite.sampleRequest()
	req.SaleID = &saleID

	sale, err := suite.service.Settle(suite.ctx, suite.shopID, req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), existing, sale)
	suite.saleRepo.AssertNotCalled(suite.T(), "Settle", mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestSettle_IgnoresClientTotals() {
	// The request type has no totals fields at all; this guards the
	// recompute path against a bill-level discount larger than the bill.
	suite.expectLookupsOK()
	suite.saleRepo.On("Settle", suite.ctx, mock.AnythingOfType("*models.Sale")).Return(nil)

	req := suite.sampleRequest()
	req.BillDiscount = 10000

	sale, err := suite.service.Settle(suite.ctx, suite.shopID, req)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.0, sale.GrossAmount)
	assert.Equal(suite.T(), 0.0, sale.GrandTotal)
	assert.Equal(suite.T(), "Zero Rupees Only", sale.AmountInWords)
}

// Concurrent settlements against a counter-backed numbering scheme must
// never share a bill number.
func TestSettle_ConcurrentBillNumbersUnique(t *testing.T) {
	shopID := uuid.New()
	customerID := uuid.New()
	itemID := uuid.New()

	saleRepo := new(MockSaleRepository)
	itemRepo := new(MockItemRepository)
	customerRepo := new(MockCustomerRepository)

	customerRepo.On("GetByID", mock.Anything, shopID, customerID).
		Return(&models.Customer{ID: customerID}, nil)
	itemRepo.On("GetByID", mock.Anything, shopID, itemID).
		Return(&models.Item{ID: itemID}, nil)

	var counter int64
	saleRepo.On("Settle", mock.Anything, mock.AnythingOfType("*models.Sale")).
		Run(func(args mock.Arguments) {
			sale := args.Get(1).(*models.Sale)
			seq := atomic.AddInt64(&counter, 1)
			sale.BillNumber = fmt.Sprintf("INV-%d", 2500+seq)
		}).
		Return(nil)

	service := NewSettlementService(saleRepo, itemRepo, customerRepo, billing.Options{})

	const n = 50
	numbers := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sale, err := service.Settle(context.Background(), shopID, &SettleRequest{
				CustomerID: customerID,
				Items: []SettleLine{
					{ItemID: itemID, Name: "Sugar", Quantity: 1, Unit: "Kg", Rate: 45, TaxType: billing.TaxExclusive, GSTRate: 5},
				},
				PaymentMode: models.PaymentCash,
			})
			assert.NoError(t, err)
			numbers <- sale.BillNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, n)
	for number := range numbers {
		assert.False(t, seen[number], "duplicate bill number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}
