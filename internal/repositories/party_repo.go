package repositories

import (
	"context"

	"kiranamart/internal/models"

	"github.com/google/uuid"
)

type PartyRepository interface {
	Create(ctx context.Context, party *models.Party) error
	GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Party, error)
	GetByPhone(ctx context.Context, shopID uuid.UUID, phone string) (*models.Party, error)
	Update(ctx context.Context, party *models.Party) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
	List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Party, error)
}

type partyRepo struct {
	db DB
}

func NewPartyRepo(db DB) PartyRepository {
	return &partyRepo{db: db}
}

const partyColumns = `id, shop_id, name, phone, address, email, gstin, gst_type, balance, created_at, updated_at`

func scanParty(row interface{ Scan(dest ...any) error }) (*models.Party, error) {
	party := &models.Party{}
	err := row.Scan(&party.ID, &party.ShopID, &party.Name, &party.Phone, &party.Address, &party.Email, &party.GSTIN, &party.GSTType, &party.Balance, &party.CreatedAt, &party.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return party, nil
}

func (r *partyRepo) Create(ctx context.Context, party *models.Party) error {
	query := `
		INSERT INTO parties (id, shop_id, name, phone, address, email, gstin, gst_type, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, party.ID, party.ShopID, party.Name, party.Phone, party.Address, party.Email, party.GSTIN, party.GSTType, party.Balance)
	return err
}

func (r *partyRepo) GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE shop_id = $1 AND id = $2`
	return scanParty(r.db.QueryRow(ctx, query, shopID, id))
}

func (r *partyRepo) GetByPhone(ctx context.Context, shopID uuid.UUID, phone string) (*models.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE shop_id = $1 AND phone = $2`
	return scanParty(r.db.QueryRow(ctx, query, shopID, phone))
}

func (r *partyRepo) Update(ctx context.Context, party *models.Party) error {
	query := `
		UPDATE parties
		SET name = $1, phone = $2, address = $3, email = $4, gstin = $5, gst_type = $6, balance = $7, updated_at = NOW()
		WHERE shop_id = $8 AND id = $9
	`
	_, err := r.db.Exec(ctx, query, party.Name, party.Phone, party.Address, party.Email, party.GSTIN, party.GSTType, party.Balance, party.ShopID, party.ID)
	return err
}

func (r *partyRepo) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	query := `DELETE FROM parties WHERE shop_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, shopID, id)
	return err
}

func (r *partyRepo) List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Party, error) {
	query := `
		SELECT ` + partyColumns + `
		FROM parties
		WHERE shop_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, shopID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []*models.Party
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, party)
	}
	return parties, rows.Err()
}
