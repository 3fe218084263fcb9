package repositories

import (
	"context"

	"kiranamart/internal/models"

	"github.com/google/uuid"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Item, error)
	GetByName(ctx context.Context, shopID uuid.UUID, name string) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
	List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Item, error)
	ListLowStock(ctx context.Context, shopID uuid.UUID) ([]*models.Item, error)
	CountSaleReferences(ctx context.Context, shopID, itemID uuid.UUID) (int64, error)
}

type itemRepo struct {
	db DB
}

func NewItemRepo(db DB) ItemRepository {
	return &itemRepo{db: db}
}

const itemColumns = `id, shop_id, name, hsn_code, category, base_unit, secondary_unit, conversion_factor,
		stock_quantity, low_stock_level, purchase_amount, purchase_tax_type, sale_amount, sale_tax_type,
		gst_slab, image_url, expiry_date, created_at, updated_at`

func scanItem(row interface{ Scan(dest ...any) error }) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(&item.ID, &item.ShopID, &item.Name, &item.HSNCode, &item.Category,
		&item.Unit.BaseUnit, &item.Unit.SecondaryUnit, &item.Unit.ConversionFactor,
		&item.StockQuantity, &item.LowStockLevel,
		&item.PurchasePrice.Amount, &item.PurchasePrice.TaxType,
		&item.SalePrice.Amount, &item.SalePrice.TaxType,
		&item.GSTSlab, &item.ImageURL, &item.ExpiryDate, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, shop_id, name, hsn_code, category, base_unit, secondary_unit, conversion_factor,
			stock_quantity, low_stock_level, purchase_amount, purchase_tax_type, sale_amount, sale_tax_type,
			gst_slab, image_url, expiry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.ShopID, item.Name, item.HSNCode, item.Category,
		item.Unit.BaseUnit, item.Unit.SecondaryUnit, item.Unit.ConversionFactor,
		item.StockQuantity, item.LowStockLevel,
		item.PurchasePrice.Amount, item.PurchasePrice.TaxType,
		item.SalePrice.Amount, item.SalePrice.TaxType,
		item.GSTSlab, item.ImageURL, item.ExpiryDate)
	return err
}

func (r *itemRepo) GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE shop_id = $1 AND id = $2`
	return scanItem(r.db.QueryRow(ctx, query, shopID, id))
}

func (r *itemRepo) GetByName(ctx context.Context, shopID uuid.UUID, name string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE shop_id = $1 AND name = $2`
	return scanItem(r.db.QueryRow(ctx, query, shopID, name))
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, hsn_code = $2, category = $3, base_unit = $4, secondary_unit = $5, conversion_factor = $6,
			stock_quantity = $7, low_stock_level = $8, purchase_amount = $9, purchase_tax_type = $10,
			sale_amount = $11, sale_tax_type = $12, gst_slab = $13, image_url = $14, expiry_date = $15, updated_at = NOW()
		WHERE shop_id = $16 AND id = $17
	`
	_, err := r.db.Exec(ctx, query, item.Name, item.HSNCode, item.Category,
		item.Unit.BaseUnit, item.Unit.SecondaryUnit, item.Unit.ConversionFactor,
		item.StockQuantity, item.LowStockLevel,
		item.PurchasePrice.Amount, item.PurchasePrice.TaxType,
		item.SalePrice.Amount, item.SalePrice.TaxType,
		item.GSTSlab, item.ImageURL, item.ExpiryDate, item.ShopID, item.ID)
	return err
}

func (r *itemRepo) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	query := `DELETE FROM items WHERE shop_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, shopID, id)
	return err
}

func (r *itemRepo) List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE shop_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, shopID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListLowStock returns items at or below their configured low-stock level.
// Both figures are stored in base units, so the comparison needs no
// conversion.
func (r *itemRepo) ListLowStock(ctx context.Context, shopID uuid.UUID) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE shop_id = $1 AND low_stock_level > 0 AND stock_quantity <= low_stock_level
		ORDER BY name ASC
	`
	rows, err := r.db.Query(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountSaleReferences reports how many settled bill lines reference the
// item. Items with history must not be deleted; invoices keep pointing at
// them.
func (r *itemRepo) CountSaleReferences(ctx context.Context, shopID, itemID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE s.shop_id = $1 AND si.item_id = $2
	`
	var count int64
	if err := r.db.QueryRow(ctx, query, shopID, itemID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
