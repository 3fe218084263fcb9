package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"kiranamart/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SaleRepoTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	repo       SaleRepository
	shopID     uuid.UUID
	customerID uuid.UUID
	ctx        context.Context
}

func (suite *SaleRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewSaleRepo(mock)
	suite.shopID = uuid.New()
	suite.customerID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *SaleRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestSaleRepoTestSuite(t *testing.T) {
	suite.Run(t, new(SaleRepoTestSuite))
}

func (suite *SaleRepoTestSuite) sampleSale(mode string) *models.Sale {
	return &models.Sale{
		ID:         uuid.New(),
		ShopID:     suite.shopID,
		CustomerID: suite.customerID,
		Date:       time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC),
		Items: []models.SaleItem{
			{
				ItemID:        uuid.New(),
				Name:          "Basmati Rice",
				HSNCode:       "1006",
				Quantity:      2,
				Unit:          "Kg",
				Rate:          100,
				TaxType:       "exclusive",
				GSTRate:       18,
				TaxableAmount: 200,
				CGSTAmount:    18,
				SGSTAmount:    18,
				NetAmount:     236,
			},
		},
		TotalTaxableValue: 200,
		TotalCGST:         18,
		TotalSGST:         18,
		TotalGST:          36,
		GrossAmount:       236,
		GrandTotal:        236,
		AmountInWords:     "Two Hundred and Thirty Six Rupees Only",
		PaymentMode:       mode,
		BillType:          models.DefaultBillType,
	}
}

func (suite *SaleRepoTestSuite) expectCounter(value int64) {
	suite.mock.ExpectQuery(`INSERT INTO bill_counters`).
		WithArgs(suite.shopID).
		WillReturnRows(pgxmock.NewRows([]string{"current_value"}).AddRow(value))
}

func (suite *SaleRepoTestSuite) TestSettle_Cash() {
	sale := suite.sampleSale(models.PaymentCash)
	item := sale.Items[0]

	suite.mock.ExpectBegin()
	suite.expectCounter(1)
	suite.mock.ExpectExec(`INSERT INTO sales`).
		WithArgs(sale.ID, sale.ShopID, sale.CustomerID, "INV-2501", sale.Date,
			sale.TotalTaxableValue, sale.TotalCGST, sale.TotalSGST, sale.TotalGST, sale.BillDiscount,
			sale.GrossAmount, sale.RoundOff, sale.GrandTotal, sale.AmountInWords, sale.PaymentMode, sale.BillType).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO sale_items`).
		WithArgs(sale.ID, 0, item.ItemID, item.Name, item.HSNCode, item.Quantity, item.Unit, item.Rate,
			item.TaxType, item.GSTRate, item.Discount, item.TaxableAmount, item.CGSTAmount, item.SGSTAmount, item.IGSTAmount, item.NetAmount).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`UPDATE items SET stock_quantity = stock_quantity - \$1`).
		WithArgs(item.Quantity, suite.shopID, item.ItemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Settle(suite.ctx, sale)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-2501", sale.BillNumber)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *SaleRepoTestSuite) TestSettle_CreditUpdatesBalance() {
	sale := suite.sampleSale(models.PaymentCredit)
	item := sale.Items[0]

	suite.mock.ExpectBegin()
	suite.expectCounter(42)
	suite.mock.ExpectExec(`INSERT INTO sales`).
		WithArgs(sale.ID, sale.ShopID, sale.CustomerID, "INV-2542", sale.Date,
			sale.TotalTaxableValue, sale.TotalCGST, sale.TotalSGST, sale.TotalGST, sale.BillDiscount,
			sale.GrossAmount, sale.RoundOff, sale.GrandTotal, sale.AmountInWords, sale.PaymentMode, sale.BillType).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO sale_items`).
		WithArgs(sale.ID, 0, item.ItemID, item.Name, item.HSNCode, item.Quantity, item.Unit, item.Rate,
			item.TaxType, item.GSTRate, item.Discount, item.TaxableAmount, item.CGSTAmount, item.SGSTAmount, item.IGSTAmount, item.NetAmount).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`UPDATE items SET stock_quantity`).
		WithArgs(item.Quantity, suite.shopID, item.ItemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE customers SET balance = balance \+ \$1`).
		WithArgs(sale.GrandTotal, suite.shopID, suite.customerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Settle(suite.ctx, sale)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-2542", sale.BillNumber)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *SaleRepoTestSuite) TestSettle_UnknownItemRollsBack() {
	sale := suite.sampleSale(models.PaymentCash)
	item := sale.Items[0]

	suite.mock.ExpectBegin()
	suite.expectCounter(2)
	suite.mock.ExpectExec(`INSERT INTO sales`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO sale_items`).
		WithArgs(sale.ID, 0, item.ItemID, item.Name, item.HSNCode, item.Quantity, item.Unit, item.Rate,
			item.TaxType, item.GSTRate, item.Discount, item.TaxableAmount, item.CGSTAmount, item.SGSTAmount, item.IGSTAmount, item.NetAmount).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// Item deleted out from under the sale: zero rows touched.
	suite.mock.ExpectExec(`UPDATE items SET stock_quantity`).
		WithArgs(item.Quantity, suite.shopID, item.ItemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectRollback()

	err := suite.repo.Settle(suite.ctx, sale)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "item not found in shop")
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *SaleRepoTestSuite) TestSettle_CounterFailure() {
	sale := suite.sampleSale(models.PaymentCash)

	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`INSERT INTO bill_counters`).
		WithArgs(suite.shopID).
		WillReturnError(errors.New("connection reset"))
	suite.mock.ExpectRollback()

	err := suite.repo.Settle(suite.ctx, sale)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "next bill number")
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *SaleRepoTestSuite) TestGetByID_LoadsItemsInOrder() {
	sale := suite.sampleSale(models.PaymentCash)
	sale.BillNumber = "INV-2501"

	saleRows := pgxmock.NewRows([]string{
		"id", "shop_id", "customer_id", "bill_number", "date",
		"total_taxable_value", "total_cgst", "total_sgst", "total_gst", "bill_discount",
		"gross_amount", "round_off", "grand_total", "amount_in_words", "payment_mode", "bill_type",
		"created_at", "updated_at",
	}).AddRow(sale.ID, sale.ShopID, sale.CustomerID, sale.BillNumber, sale.Date,
		sale.TotalTaxableValue, sale.TotalCGST, sale.TotalSGST, sale.TotalGST, sale.BillDiscount,
		sale.GrossAmount, sale.RoundOff, sale.GrandTotal, sale.AmountInWords, sale.PaymentMode, sale.BillType,
		time.Now(), time.Now())

	itemID1 := uuid.New()
	itemID2 := uuid.New()
	itemRows := pgxmock.NewRows([]string{
		"item_id", "name", "hsn_code", "quantity", "unit", "rate", "tax_type", "gst_rate", "discount",
		"taxable_amount", "cgst_amount", "sgst_amount", "igst_amount", "net_amount",
	}).
		AddRow(itemID1, "Basmati Rice", "1006", 2.0, "Kg", 100.0, "exclusive", 18.0, 0.0, 200.0, 18.0, 18.0, 0.0, 236.0).
		AddRow(itemID2, "Toor Dal", "0713", 1.0, "Kg", 150.0, "inclusive", 5.0, 0.0, 150.0, 0.0, 0.0, 0.0, 150.0)

	suite.mock.ExpectQuery(`SELECT (.+) FROM sales WHERE shop_id = \$1 AND id = \$2`).
		WithArgs(suite.shopID, sale.ID).
		WillReturnRows(saleRows)
	suite.mock.ExpectQuery(`FROM sale_items`).
		WithArgs(sale.ID).
		WillReturnRows(itemRows)

	got, err := suite.repo.GetByID(suite.ctx, suite.shopID, sale.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-2501", got.BillNumber)
	assert.Len(suite.T(), got.Items, 2)
	assert.Equal(suite.T(), itemID1, got.Items[0].ItemID)
	assert.Equal(suite.T(), itemID2, got.Items[1].ItemID)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}
