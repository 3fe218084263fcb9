package repositories

import (
	"context"

	"kiranamart/internal/models"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Customer, error)
	GetByPhone(ctx context.Context, shopID uuid.UUID, phone string) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
	List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Customer, error)
}

type customerRepo struct {
	db DB
}

func NewCustomerRepo(db DB) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `id, shop_id, name, phone, address, password_hash, balance, created_at, updated_at`

func scanCustomer(row interface{ Scan(dest ...any) error }) (*models.Customer, error) {
	customer := &models.Customer{}
	err := row.Scan(&customer.ID, &customer.ShopID, &customer.Name, &customer.Phone, &customer.Address, &customer.PasswordHash, &customer.Balance, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, shop_id, name, phone, address, password_hash, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, customer.ID, customer.ShopID, customer.Name, customer.Phone, customer.Address, customer.PasswordHash, customer.Balance)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE shop_id = $1 AND id = $2`
	return scanCustomer(r.db.QueryRow(ctx, query, shopID, id))
}

func (r *customerRepo) GetByPhone(ctx context.Context, shopID uuid.UUID, phone string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE shop_id = $1 AND phone = $2`
	return scanCustomer(r.db.QueryRow(ctx, query, shopID, phone))
}

// Update rewrites profile fields only. Balance is deliberately excluded:
// it moves exclusively through settlement and payment recording, both of
// which use atomic increments.
func (r *customerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, phone = $2, address = $3, updated_at = NOW()
		WHERE shop_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, customer.Name, customer.Phone, customer.Address, customer.ShopID, customer.ID)
	return err
}

func (r *customerRepo) Delete(ctx context.Context, shopID, id uuid.UUID) error {
	query := `DELETE FROM customers WHERE shop_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, shopID, id)
	return err
}

func (r *customerRepo) List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE shop_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, shopID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}
