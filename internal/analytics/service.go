package analytics

import (
	"context"
	"encoding/json"
	"time"

	"kiranamart/internal/caching"
	"kiranamart/internal/models"
	"kiranamart/internal/repositories"

	"github.com/google/uuid"
)

const (
	summaryTTL      = 5 * time.Minute
	summaryPageSize = 500
)

// DashboardService computes the shop-admin dashboard figures: lifetime sales,
// GST collected, outstanding credit and low-stock pressure. Results are
// cached briefly so the dashboard does not rescan the sales table on every
// page load.
type DashboardService struct {
	saleRepo     repositories.SaleRepository
	itemRepo     repositories.ItemRepository
	customerRepo repositories.CustomerRepository
	cacheSvc     caching.CacheService
}

// Summary is one shop's headline numbers.
type Summary struct {
	ShopID            uuid.UUID `json:"shop_id"`
	TotalSales        float64   `json:"total_sales"`
	GSTCollected      float64   `json:"gst_collected"`
	BillCount         int       `json:"bill_count"`
	CreditOutstanding float64   `json:"credit_outstanding"`
	LowStockItems     int       `json:"low_stock_items"`
	LastUpdated       time.Time `json:"last_updated"`
}

// DailySales is one point of the sales trend, bucketed by calendar day.
type DailySales struct {
	Date       time.Time `json:"date"`
	Amount     float64   `json:"amount"`
	BillCount  int       `json:"bill_count"`
	GSTAmount  float64   `json:"gst_amount"`
}

func NewDashboardService(saleRepo repositories.SaleRepository, itemRepo repositories.ItemRepository, customerRepo repositories.CustomerRepository, cacheSvc caching.CacheService) *DashboardService {
	return &DashboardService{
		saleRepo:     saleRepo,
		itemRepo:     itemRepo,
		customerRepo: customerRepo,
		cacheSvc:     cacheSvc,
	}
}

func summaryCacheKey(shopID uuid.UUID) string {
	// Keyed with a trailing segment so shop-wide invalidation
	// (kiranamart:*:<shop>:*) sweeps it up with the entity caches.
	return "kiranamart:summary:" + shopID.String() + ":totals"
}

// GetSummary returns the cached summary when fresh, recomputing otherwise.
func (s *DashboardService) GetSummary(ctx context.Context, shopID uuid.UUID) (*Summary, error) {
	if s.cacheSvc != nil {
		if raw, err := s.cacheSvc.GetString(ctx, summaryCacheKey(shopID)); err == nil && raw != "" {
			var cached Summary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	summary, err := s.computeSummary(ctx, shopID)
	if err != nil {
		return nil, err
	}

	if s.cacheSvc != nil {
		if raw, err := json.Marshal(summary); err == nil {
			// best effort: a failed cache write only costs a recompute
			_ = s.cacheSvc.SetString(ctx, summaryCacheKey(shopID), string(raw), summaryTTL)
		}
	}
	return summary, nil
}

func (s *DashboardService) computeSummary(ctx context.Context, shopID uuid.UUID) (*Summary, error) {
	summary := &Summary{
		ShopID:      shopID,
		LastUpdated: time.Now().UTC(),
	}

	if err := s.forEachSale(ctx, shopID, func(sale *models.Sale) {
		summary.TotalSales += sale.GrandTotal
		summary.GSTCollected += sale.TotalGST
		summary.BillCount++
	}); err != nil {
		return nil, err
	}

	lowStock, err := s.itemRepo.ListLowStock(ctx, shopID)
	if err != nil {
		return nil, err
	}
	summary.LowStockItems = len(lowStock)

	for offset := 0; ; offset += summaryPageSize {
		customers, err := s.customerRepo.List(ctx, shopID, summaryPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, customer := range customers {
			if customer.Balance > 0 {
				summary.CreditOutstanding += customer.Balance
			}
		}
		if len(customers) < summaryPageSize {
			break
		}
	}

	return summary, nil
}

// SalesTrend buckets the last `days` days of settled bills by calendar day,
// oldest first. Days with no sales are present with zero amounts.
func (s *DashboardService) SalesTrend(ctx context.Context, shopID uuid.UUID, days int) ([]DailySales, error) {
	if days <= 0 {
		days = 30
	}

	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -(days - 1))
	buckets := make(map[time.Time]*DailySales, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		buckets[day] = &DailySales{Date: day}
	}

	if err := s.forEachSale(ctx, shopID, func(sale *models.Sale) {
		day := sale.Date.UTC().Truncate(24 * time.Hour)
		bucket, ok := buckets[day]
		if !ok {
			return
		}
		bucket.Amount += sale.GrandTotal
		bucket.GSTAmount += sale.TotalGST
		bucket.BillCount++
	}); err != nil {
		return nil, err
	}

	trend := make([]DailySales, 0, days)
	for i := 0; i < days; i++ {
		trend = append(trend, *buckets[start.AddDate(0, 0, i)])
	}
	return trend, nil
}

func (s *DashboardService) forEachSale(ctx context.Context, shopID uuid.UUID, fn func(*models.Sale)) error {
	for offset := 0; ; offset += summaryPageSize {
		sales, err := s.saleRepo.List(ctx, shopID, summaryPageSize, offset)
		if err != nil {
			return err
		}
		for _, sale := range sales {
			fn(sale)
		}
		if len(sales) < summaryPageSize {
			return nil
		}
	}
}
