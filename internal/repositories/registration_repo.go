package repositories

import (
	"context"

	"kiranamart/internal/models"

	"github.com/google/uuid"
)

type RegistrationRepository interface {
	UpsertPending(ctx context.Context, req *models.RegistrationRequest) error
	GetPendingByEmail(ctx context.Context, email string) (*models.RegistrationRequest, error)
	MarkApproved(ctx context.Context, id uuid.UUID, shopID, shopCode string) error
}

type registrationRepo struct {
	db DB
}

func NewRegistrationRepo(db DB) RegistrationRepository {
	return &registrationRepo{db: db}
}

const registrationColumns = `id, shop_name, owner_name, email, phone, password_hash, address, city, state, status, shop_id, shop_code, created_at, updated_at`

// UpsertPending creates or refreshes the pending signup for an email, so a
// re-register with a new OTP reuses the same row.
func (r *registrationRepo) UpsertPending(ctx context.Context, req *models.RegistrationRequest) error {
	query := `
		INSERT INTO shop_registration_requests (id, shop_name, owner_name, email, phone, password_hash, address, city, state, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', NOW(), NOW())
		ON CONFLICT (email) WHERE status = 'pending'
		DO UPDATE SET shop_name = EXCLUDED.shop_name, owner_name = EXCLUDED.owner_name, phone = EXCLUDED.phone,
			password_hash = EXCLUDED.password_hash, address = EXCLUDED.address, city = EXCLUDED.city,
			state = EXCLUDED.state, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, req.ID, req.ShopName, req.OwnerName, req.Email, req.Phone, req.PasswordHash, req.Address, req.City, req.State)
	return err
}

func (r *registrationRepo) GetPendingByEmail(ctx context.Context, email string) (*models.RegistrationRequest, error) {
	req := &models.RegistrationRequest{}
	query := `
		SELECT ` + registrationColumns + `
		FROM shop_registration_requests
		WHERE email = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, email).Scan(&req.ID, &req.ShopName, &req.OwnerName, &req.Email, &req.Phone, &req.PasswordHash, &req.Address, &req.City, &req.State, &req.Status, &req.ShopID, &req.ShopCode, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *registrationRepo) MarkApproved(ctx context.Context, id uuid.UUID, shopID, shopCode string) error {
	query := `
		UPDATE shop_registration_requests
		SET status = 'approved', shop_id = $1, shop_code = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, shopID, shopCode, id)
	return err
}
