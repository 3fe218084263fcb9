package repositories

import (
	"context"

	"kiranamart/internal/models"

	"github.com/google/uuid"
)

type ShopAdminRepository interface {
	Create(ctx context.Context, admin *models.ShopAdmin) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ShopAdmin, error)
	GetByEmail(ctx context.Context, email string) (*models.ShopAdmin, error)
	GetByShopID(ctx context.Context, shopID uuid.UUID) (*models.ShopAdmin, error)
	UpdateStatusByShopID(ctx context.Context, shopID uuid.UUID, fromStatus, toStatus string) (*models.ShopAdmin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type shopAdminRepo struct {
	db DB
}

func NewShopAdminRepo(db DB) ShopAdminRepository {
	return &shopAdminRepo{db: db}
}

const shopAdminColumns = `id, shop_id, name, email, phone, password_hash, status, created_at, updated_at`

func scanShopAdmin(row interface{ Scan(dest ...any) error }) (*models.ShopAdmin, error) {
	admin := &models.ShopAdmin{}
	err := row.Scan(&admin.ID, &admin.ShopID, &admin.Name, &admin.Email, &admin.Phone, &admin.PasswordHash, &admin.Status, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *shopAdminRepo) Create(ctx context.Context, admin *models.ShopAdmin) error {
	query := `
		INSERT INTO shop_admins (id, shop_id, name, email, phone, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, admin.ID, admin.ShopID, admin.Name, admin.Email, admin.Phone, admin.PasswordHash, admin.Status)
	return err
}

func (r *shopAdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ShopAdmin, error) {
	query := `SELECT ` + shopAdminColumns + ` FROM shop_admins WHERE id = $1`
	return scanShopAdmin(r.db.QueryRow(ctx, query, id))
}

func (r *shopAdminRepo) GetByEmail(ctx context.Context, email string) (*models.ShopAdmin, error) {
	query := `SELECT ` + shopAdminColumns + ` FROM shop_admins WHERE email = $1`
	return scanShopAdmin(r.db.QueryRow(ctx, query, email))
}

func (r *shopAdminRepo) GetByShopID(ctx context.Context, shopID uuid.UUID) (*models.ShopAdmin, error) {
	query := `SELECT ` + shopAdminColumns + ` FROM shop_admins WHERE shop_id = $1 ORDER BY created_at ASC LIMIT 1`
	return scanShopAdmin(r.db.QueryRow(ctx, query, shopID))
}

func (r *shopAdminRepo) UpdateStatusByShopID(ctx context.Context, shopID uuid.UUID, fromStatus, toStatus string) (*models.ShopAdmin, error) {
	query := `
		UPDATE shop_admins
		SET status = $1, updated_at = NOW()
		WHERE shop_id = $2 AND status = $3
		RETURNING ` + shopAdminColumns + `
	`
	return scanShopAdmin(r.db.QueryRow(ctx, query, toStatus, shopID, fromStatus))
}

func (r *shopAdminRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE shop_admins SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, passwordHash, id)
	return err
}

type SuperAdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.SuperAdmin, error)
}

type superAdminRepo struct {
	db DB
}

func NewSuperAdminRepo(db DB) SuperAdminRepository {
	return &superAdminRepo{db: db}
}

func (r *superAdminRepo) GetByEmail(ctx context.Context, email string) (*models.SuperAdmin, error) {
	admin := &models.SuperAdmin{}
	query := `SELECT id, email, password_hash, created_at FROM super_admins WHERE email = $1`
	err := r.db.QueryRow(ctx, query, email).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		return nil, err
	}
	return admin, nil
}
