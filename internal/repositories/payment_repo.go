package repositories

import (
	"context"
	"fmt"

	"kiranamart/internal/models"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	// Record inserts the payment and decrements the customer balance in
	// one transaction.
	Record(ctx context.Context, payment *models.Payment) error
	ListByCustomer(ctx context.Context, shopID, customerID uuid.UUID, limit, offset int) ([]*models.Payment, error)
}

type paymentRepo struct {
	db DB
}

func NewPaymentRepo(db DB) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Record(ctx context.Context, payment *models.Payment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO payments (id, shop_id, customer_id, amount, mode, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, payment.ID, payment.ShopID, payment.CustomerID, payment.Amount, payment.Mode, payment.Note)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE customers SET balance = balance - $1, updated_at = NOW()
		WHERE shop_id = $2 AND id = $3
	`, payment.Amount, payment.ShopID, payment.CustomerID)
	if err != nil {
		return fmt.Errorf("update customer balance: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update customer balance: customer not found in shop")
	}

	return tx.Commit(ctx)
}

func (r *paymentRepo) ListByCustomer(ctx context.Context, shopID, customerID uuid.UUID, limit, offset int) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, shop_id, customer_id, amount, mode, note, created_at
		FROM payments
		WHERE shop_id = $1 AND customer_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, shopID, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.ShopID, &p.CustomerID, &p.Amount, &p.Mode, &p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
