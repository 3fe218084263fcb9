package repositories

import (
	"context"

	"kiranamart/internal/models"

	"github.com/google/uuid"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	GetByShopID(ctx context.Context, shopID string) (*models.Shop, error)
	GetByShopCode(ctx context.Context, shopCode string) (*models.Shop, error)
	GetByName(ctx context.Context, name string) (*models.Shop, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Shop, error)
	UpdateStatus(ctx context.Context, shopID, fromStatus, toStatus string) (*models.Shop, error)
	UpdateLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error
	NextShopNumber(ctx context.Context) (int64, error)
	ShopCodeExists(ctx context.Context, shopCode string) (bool, error)
}

type shopRepo struct {
	db DB
}

func NewShopRepo(db DB) ShopRepository {
	return &shopRepo{db: db}
}

const shopColumns = `id, shop_id, shop_code, name, address, city, state, logo_url, status, created_at, updated_at`

func scanShop(row interface{ Scan(dest ...any) error }) (*models.Shop, error) {
	shop := &models.Shop{}
	err := row.Scan(&shop.ID, &shop.ShopID, &shop.ShopCode, &shop.Name, &shop.Address, &shop.City, &shop.State, &shop.LogoURL, &shop.Status, &shop.CreatedAt, &shop.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return shop, nil
}

func (r *shopRepo) Create(ctx context.Context, shop *models.Shop) error {
	query := `
		INSERT INTO shops (id, shop_id, shop_code, name, address, city, state, logo_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, shop.ID, shop.ShopID, shop.ShopCode, shop.Name, shop.Address, shop.City, shop.State, shop.LogoURL, shop.Status)
	return err
}

func (r *shopRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`
	return scanShop(r.db.QueryRow(ctx, query, id))
}

func (r *shopRepo) GetByShopID(ctx context.Context, shopID string) (*models.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE shop_id = $1`
	return scanShop(r.db.QueryRow(ctx, query, shopID))
}

func (r *shopRepo) GetByShopCode(ctx context.Context, shopCode string) (*models.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE shop_code = $1`
	return scanShop(r.db.QueryRow(ctx, query, shopCode))
}

func (r *shopRepo) GetByName(ctx context.Context, name string) (*models.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE name = $1`
	return scanShop(r.db.QueryRow(ctx, query, name))
}

func (r *shopRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Shop, error) {
	query := `
		SELECT ` + shopColumns + `
		FROM shops
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shops []*models.Shop
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}

// UpdateStatus transitions a shop from one approval status to another,
// keyed by the human shop_id. Returns the updated shop, or pgx.ErrNoRows
// when no shop is in the expected source status.
func (r *shopRepo) UpdateStatus(ctx context.Context, shopID, fromStatus, toStatus string) (*models.Shop, error) {
	query := `
		UPDATE shops
		SET status = $1, updated_at = NOW()
		WHERE shop_id = $2 AND status = $3
		RETURNING ` + shopColumns + `
	`
	return scanShop(r.db.QueryRow(ctx, query, toStatus, shopID, fromStatus))
}

func (r *shopRepo) UpdateLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error {
	query := `UPDATE shops SET logo_url = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, logoURL, id)
	return err
}

// NextShopNumber atomically increments the platform-wide shop counter and
// returns the new value. The upsert keeps two concurrent registrations from
// ever observing the same number.
func (r *shopRepo) NextShopNumber(ctx context.Context) (int64, error) {
	query := `
		INSERT INTO counters (name, current_value)
		VALUES ('shop_number', 1)
		ON CONFLICT (name) DO UPDATE SET current_value = counters.current_value + 1
		RETURNING current_value
	`
	var value int64
	if err := r.db.QueryRow(ctx, query).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}

func (r *shopRepo) ShopCodeExists(ctx context.Context, shopCode string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM shops WHERE shop_code = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, shopCode).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
