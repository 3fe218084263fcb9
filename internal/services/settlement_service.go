package services

import (
	"context"
	"errors"
	"log"
	"time"

	"kiranamart/internal/billing"
	"kiranamart/internal/common"
	"kiranamart/internal/models"
	"kiranamart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SettleLine is one cart entry submitted for settlement. Rate, tax type
// and GST rate are the values snapshotted when the item was added to the
// cart; the catalog is consulted only to confirm the item still exists in
// the shop.
type SettleLine struct {
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	HSNCode  string    `json:"hsn_code"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
	Rate     float64   `json:"rate"`
	TaxType  string    `json:"tax_type"`
	GSTRate  float64   `json:"gst_rate"`
	Discount float64   `json:"discount"`
}

// SettleRequest carries the cart. Totals are never part of the request:
// the server recomputes everything, so a tampering client cannot bill
// itself a discount.
type SettleRequest struct {
	// SaleID lets the caller retry a settlement that timed out without
	// double-applying its effects. Optional; the server generates one
	// when absent.
	SaleID       *uuid.UUID   `json:"sale_id"`
	CustomerID   uuid.UUID    `json:"customer_id"`
	Items        []SettleLine `json:"items"`
	BillDiscount float64      `json:"bill_discount"`
	PaymentMode  string       `json:"payment_mode"`
	BillType     string       `json:"bill_type"`
}

type SettlementServiceInterface interface {
	Settle(ctx context.Context, shopID uuid.UUID, req *SettleRequest) (*models.Sale, error)
	GetSale(ctx context.Context, shopID, saleID uuid.UUID) (*models.Sale, error)
	ListSales(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Sale, error)
	ListSalesByCustomer(ctx context.Context, shopID, customerID uuid.UUID, limit, offset int) ([]*models.Sale, error)
}

type settlementService struct {
	saleRepo     repositories.SaleRepository
	itemRepo     repositories.ItemRepository
	customerRepo repositories.CustomerRepository
	opts         billing.Options
}

// NewSettlementService creates a new settlement service
func NewSettlementService(saleRepo repositories.SaleRepository, itemRepo repositories.ItemRepository, customerRepo repositories.CustomerRepository, opts billing.Options) SettlementServiceInterface {
	return &settlementService{
		saleRepo:     saleRepo,
		itemRepo:     itemRepo,
		customerRepo: customerRepo,
		opts:         opts,
	}
}

func (s *settlementService) validate(req *SettleRequest) error {
	if req.CustomerID == uuid.Nil {
		return &ValidationError{Field: "customer_id", Message: "a customer must be selected"}
	}
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Message: "cart is empty"}
	}
	if err := common.ValidatePaymentMode(req.PaymentMode); err != nil {
		return &ValidationError{Field: "payment_mode", Message: err.Error()}
	}
	if req.BillDiscount < 0 {
		return &ValidationError{Field: "bill_discount", Message: "must not be negative"}
	}
	for _, line := range req.Items {
		if line.ItemID == uuid.Nil {
			return &ValidationError{Field: "items", Message: "line item is missing an item id"}
		}
		if line.Quantity <= 0 {
			return &ValidationError{Field: "items", Message: "quantity must be positive"}
		}
		if line.Rate < 0 {
			return &ValidationError{Field: "items", Message: "rate must not be negative"}
		}
		if line.Discount < 0 {
			return &ValidationError{Field: "items", Message: "discount must not be negative"}
		}
		if err := common.ValidateTaxType(line.TaxType, "tax type"); err != nil {
			return &ValidationError{Field: "items", Message: err.Error()}
		}
		if line.GSTRate < 0 || line.GSTRate > 100 {
			return &ValidationError{Field: "items", Message: "GST rate must be between 0 and 100"}
		}
	}
	return nil
}

// Settle turns a cart into a persisted tax invoice. All reads and writes
// are scoped to shopID; validation and lookups happen before the first
// write, and every side effect rides the sale repository's transaction.
func (s *settlementService) Settle(ctx context.Context, shopID uuid.UUID, req *SettleRequest) (*models.Sale, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	// Idempotent retry: same sale id, same outcome, effects applied once.
	if req.SaleID != nil {
		existing, err := s.saleRepo.GetByID(ctx, shopID, *req.SaleID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	if _, err := s.customerRepo.GetByID(ctx, shopID, req.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "customer"}
		}
		return nil, err
	}

	results := make([]billing.LineResult, 0, len(req.Items))
	saleItems := make([]models.SaleItem, 0, len(req.Items))
	for _, line := range req.Items {
		item, err := s.itemRepo.GetByID(ctx, shopID, line.ItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Resource: "item"}
			}
			return nil, err
		}

		// Carts built from the catalog send the unit along; older clients
		// leave it blank, so fall back to the item's selling unit.
		unit := line.Unit
		if unit == "" {
			unit = item.SellingUnit()
		}

		result := billing.CalculateLine(billing.Line{
			Rate:     line.Rate,
			Quantity: line.Quantity,
			Discount: line.Discount,
			TaxType:  line.TaxType,
			GSTRate:  line.GSTRate,
		}, s.opts)
		results = append(results, result)

		saleItems = append(saleItems, models.SaleItem{
			ItemID:        line.ItemID,
			Name:          line.Name,
			HSNCode:       line.HSNCode,
			Quantity:      line.Quantity,
			Unit:          unit,
			Rate:          line.Rate,
			TaxType:       line.TaxType,
			GSTRate:       line.GSTRate,
			Discount:      line.Discount,
			TaxableAmount: result.TaxableAmount,
			CGSTAmount:    result.CGSTAmount,
			SGSTAmount:    result.SGSTAmount,
			IGSTAmount:    result.IGSTAmount,
			NetAmount:     result.NetAmount,
		})
	}

	totals := billing.Aggregate(results, req.BillDiscount)

	billType := req.BillType
	if billType == "" {
		billType = models.DefaultBillType
	}

	saleID := uuid.New()
	if req.SaleID != nil {
		saleID = *req.SaleID
	}

	sale := &models.Sale{
		ID:         saleID,
		ShopID:     shopID,
		CustomerID: req.CustomerID,
		Date:       time.Now(),
		Items:      saleItems,

		TotalTaxableValue: totals.TotalTaxableValue,
		TotalCGST:         totals.TotalCGST,
		TotalSGST:         totals.TotalSGST,
		TotalGST:          totals.TotalGST,
		BillDiscount:      req.BillDiscount,

		GrossAmount:   totals.GrossAmount,
		RoundOff:      totals.RoundOff,
		GrandTotal:    totals.GrandTotal,
		AmountInWords: totals.AmountInWords,

		PaymentMode: req.PaymentMode,
		BillType:    billType,
	}

	if err := s.saleRepo.Settle(ctx, sale); err != nil {
		log.Printf("ERROR: settlement failed for shop %s customer %s: %v", shopID, req.CustomerID, err)
		return nil, err
	}

	return sale, nil
}

func (s *settlementService) GetSale(ctx context.Context, shopID, saleID uuid.UUID) (*models.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, shopID, saleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "sale"}
		}
		return nil, err
	}
	return sale, nil
}

func (s *settlementService) ListSales(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Sale, error) {
	return s.saleRepo.List(ctx, shopID, limit, offset)
}

func (s *settlementService) ListSalesByCustomer(ctx context.Context, shopID, customerID uuid.UUID, limit, offset int) ([]*models.Sale, error) {
	return s.saleRepo.ListByCustomer(ctx, shopID, customerID, limit, offset)
}
