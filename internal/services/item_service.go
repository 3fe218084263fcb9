package services

import (
	"context"
	"errors"
	"log"
	"time"

	"kiranamart/internal/caching"
	"kiranamart/internal/models"
	"kiranamart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const itemCacheTTL = 10 * time.Minute

type ItemServiceInterface interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, shopID, itemID uuid.UUID) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, shopID, itemID uuid.UUID) error
	ListItems(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Item, error)
	ListLowStockItems(ctx context.Context, shopID uuid.UUID) ([]*models.Item, error)
}

type itemService struct {
	itemRepo repositories.ItemRepository
	cache    caching.CacheService
}

// NewItemService creates a new item service
func NewItemService(itemRepo repositories.ItemRepository, cache caching.CacheService) ItemServiceInterface {
	return &itemService{
		itemRepo: itemRepo,
		cache:    cache,
	}
}

func (s *itemService) validateItem(item *models.Item) error {
	if item.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if item.Unit.BaseUnit == "" {
		return &ValidationError{Field: "unit", Message: "base unit is required"}
	}
	if item.Unit.SecondaryUnit != nil && *item.Unit.SecondaryUnit != "" && item.Unit.ConversionFactor <= 0 {
		return &ValidationError{Field: "unit", Message: "conversion factor must be positive when a secondary unit is set"}
	}
	if item.StockQuantity < 0 {
		return &ValidationError{Field: "stock_quantity", Message: "must not be negative"}
	}
	if item.LowStockLevel < 0 {
		return &ValidationError{Field: "low_stock_level", Message: "must not be negative"}
	}
	if item.SalePrice.Amount < 0 || item.PurchasePrice.Amount < 0 {
		return &ValidationError{Field: "price", Message: "must not be negative"}
	}
	return nil
}

// CreateItem stores a new catalog item. Stock and low-stock figures arrive
// in the unit the shopkeeper entered them in; when that is the secondary
// unit they are converted to base units here, once, so everything below
// this layer deals in base units only.
func (s *itemService) CreateItem(ctx context.Context, item *models.Item) error {
	if err := s.validateItem(item); err != nil {
		return err
	}

	existing, err := s.itemRepo.GetByName(ctx, item.ShopID, item.Name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if existing != nil {
		return &ConflictError{Message: "an item with this name already exists"}
	}

	if item.Unit.SecondaryUnit != nil && *item.Unit.SecondaryUnit != "" {
		item.StockQuantity *= item.Unit.ConversionFactor
		item.LowStockLevel *= item.Unit.ConversionFactor
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return err
	}
	// A new item changes what the dashboard reports, so sweep the whole
	// shop's cache rather than a single entity key.
	if err := s.cache.InvalidateShopCache(ctx, item.ShopID); err != nil {
		log.Printf("WARN: failed to invalidate shop cache %s: %v", item.ShopID, err)
	}
	return nil
}

func (s *itemService) GetItem(ctx context.Context, shopID, itemID uuid.UUID) (*models.Item, error) {
	if cached, err := s.cache.GetItem(ctx, shopID, itemID); err == nil && cached != nil {
		return cached, nil
	}

	item, err := s.itemRepo.GetByID(ctx, shopID, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "item"}
		}
		return nil, err
	}

	if err := s.cache.SetItem(ctx, shopID, item, itemCacheTTL); err != nil {
		log.Printf("WARN: failed to cache item %s: %v", itemID, err)
	}
	return item, nil
}

// UpdateItem edits catalog fields. Stock quantity is not touched here:
// stock moves only through settlement and the purchase workflow, both of
// which use atomic deltas.
func (s *itemService) UpdateItem(ctx context.Context, item *models.Item) error {
	if err := s.validateItem(item); err != nil {
		return err
	}

	existing, err := s.itemRepo.GetByName(ctx, item.ShopID, item.Name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if existing != nil && existing.ID != item.ID {
		return &ConflictError{Message: "an item with this name already exists"}
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return err
	}
	if err := s.cache.DeleteItem(ctx, item.ShopID, item.ID); err != nil {
		log.Printf("WARN: failed to invalidate item cache %s: %v", item.ID, err)
	}
	return nil
}

// DeleteItem removes an item unless historical invoices reference it.
// Settled invoices are an append-only ledger, so deleting a referenced
// item would orphan their lines.
func (s *itemService) DeleteItem(ctx context.Context, shopID, itemID uuid.UUID) error {
	refs, err := s.itemRepo.CountSaleReferences(ctx, shopID, itemID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &ConflictError{Message: "item is referenced by settled invoices and cannot be deleted"}
	}

	if err := s.itemRepo.Delete(ctx, shopID, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Resource: "item"}
		}
		return err
	}
	if err := s.cache.DeleteItem(ctx, shopID, itemID); err != nil {
		log.Printf("WARN: failed to invalidate item cache %s: %v", itemID, err)
	}
	return nil
}

func (s *itemService) ListItems(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Item, error) {
	return s.itemRepo.List(ctx, shopID, limit, offset)
}

func (s *itemService) ListLowStockItems(ctx context.Context, shopID uuid.UUID) ([]*models.Item, error) {
	return s.itemRepo.ListLowStock(ctx, shopID)
}
