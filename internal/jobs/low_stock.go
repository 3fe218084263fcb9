package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"kiranamart/internal/repositories"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type LowStockAlertService struct {
	itemRepo repositories.ItemRepository
	shopRepo repositories.ShopRepository
}

type LowStockAlert struct {
	ShopID        uuid.UUID
	ItemID        uuid.UUID
	ItemName      string
	BaseUnit      string
	CurrentStock  float64
	LowStockLevel float64
}

func NewLowStockAlertService(itemRepo repositories.ItemRepository, shopRepo repositories.ShopRepository) *LowStockAlertService {
	return &LowStockAlertService{
		itemRepo: itemRepo,
		shopRepo: shopRepo,
	}
}

// CheckLowStock returns every item of the shop whose stock has fallen to
// or below its configured threshold. Items whose threshold is zero are
// considered unmonitored and skipped by the repository query.
func (a *LowStockAlertService) CheckLowStock(ctx context.Context, shopID uuid.UUID) ([]LowStockAlert, error) {
	items, err := a.itemRepo.ListLowStock(ctx, shopID)
	if err != nil {
		log.Printf("Failed to list low-stock items for shop %s: %v", shopID.String(), err)
		return nil, err
	}

	alerts := make([]LowStockAlert, 0, len(items))
	for _, item := range items {
		alerts = append(alerts, LowStockAlert{
			ShopID:        shopID,
			ItemID:        item.ID,
			ItemName:      item.Name,
			BaseUnit:      item.Unit.BaseUnit,
			CurrentStock:  item.StockQuantity,
			LowStockLevel: item.LowStockLevel,
		})
	}
	return alerts, nil
}

func (a *LowStockAlertService) LogLowStockAlerts(ctx context.Context, alerts []LowStockAlert) {
	if len(alerts) == 0 {
		return
	}

	log.Printf("Low stock alerts for shop %s:", alerts[0].ShopID.String())
	for _, alert := range alerts {
		log.Printf("- Item '%s' has %.2f %s left (threshold: %.2f)",
			alert.ItemName, alert.CurrentStock, alert.BaseUnit, alert.LowStockLevel)
	}
}

// LowStockAlertHandler runs one shop's scan as an asynq task.
func (a *LowStockAlertService) LowStockAlertHandler(ctx context.Context, t *asynq.Task) error {
	var payload LowStockAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal low-stock payload: %w", err)
	}

	alerts, err := a.CheckLowStock(ctx, payload.ShopID)
	if err != nil {
		return err
	}
	a.LogLowStockAlerts(ctx, alerts)
	return nil
}
