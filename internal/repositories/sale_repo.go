package repositories

import (
	"context"
	"fmt"

	"kiranamart/internal/models"

	"github.com/google/uuid"
)

// billNumberBase is added to the per-shop counter so printed numbers start
// at INV-2501, matching the numbering the shops already have on paper.
const billNumberBase = 2500

type SaleRepository interface {
	// Settle persists the sale and applies its side effects (bill number,
	// stock decrements, credit balance) in a single transaction.
	Settle(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Sale, error)
	ListByCustomer(ctx context.Context, shopID, customerID uuid.UUID, limit, offset int) ([]*models.Sale, error)
}

type saleRepo struct {
	db DB
}

func NewSaleRepo(db DB) SaleRepository {
	return &saleRepo{db: db}
}

// Settle runs the whole settlement as one transaction so an invoice can
// never exist without its stock and balance effects, and vice versa.
//
// The bill number comes from an upsert-increment on the per-shop counter
// row; concurrent settlements for the same shop serialize on that row, so
// two bills can never share a number. A transaction that fails after the
// increment leaves a gap in the sequence, which is acceptable; a duplicate
// or a half-applied invoice is not.
func (r *saleRepo) Settle(ctx context.Context, sale *models.Sale) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var seq int64
	err = tx.QueryRow(ctx, `
		INSERT INTO bill_counters (shop_id, current_value)
		VALUES ($1, 1)
		ON CONFLICT (shop_id) DO UPDATE SET current_value = bill_counters.current_value + 1
		RETURNING current_value
	`, sale.ShopID).Scan(&seq)
	if err != nil {
		return fmt.Errorf("next bill number: %w", err)
	}
	sale.BillNumber = fmt.Sprintf("INV-%d", billNumberBase+seq)

	_, err = tx.Exec(ctx, `
		INSERT INTO sales (id, shop_id, customer_id, bill_number, date,
			total_taxable_value, total_cgst, total_sgst, total_gst, bill_discount,
			gross_amount, round_off, grand_total, amount_in_words, payment_mode, bill_type,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
	`, sale.ID, sale.ShopID, sale.CustomerID, sale.BillNumber, sale.Date,
		sale.TotalTaxableValue, sale.TotalCGST, sale.TotalSGST, sale.TotalGST, sale.BillDiscount,
		sale.GrossAmount, sale.RoundOff, sale.GrandTotal, sale.AmountInWords, sale.PaymentMode, sale.BillType)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	for i, item := range sale.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_items (sale_id, position, item_id, name, hsn_code, quantity, unit, rate,
				tax_type, gst_rate, discount, taxable_amount, cgst_amount, sgst_amount, igst_amount, net_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`, sale.ID, i, item.ItemID, item.Name, item.HSNCode, item.Quantity, item.Unit, item.Rate,
			item.TaxType, item.GSTRate, item.Discount, item.TaxableAmount, item.CGSTAmount, item.SGSTAmount, item.IGSTAmount, item.NetAmount)
		if err != nil {
			return fmt.Errorf("insert sale item %d: %w", i, err)
		}

		// Atomic delta, never read-modify-write: concurrent sales of the
		// same item must both land.
		tag, err := tx.Exec(ctx, `
			UPDATE items SET stock_quantity = stock_quantity - $1, updated_at = NOW()
			WHERE shop_id = $2 AND id = $3
		`, item.Quantity, sale.ShopID, item.ItemID)
		if err != nil {
			return fmt.Errorf("decrement stock for item %s: %w", item.ItemID, err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("decrement stock for item %s: item not found in shop", item.ItemID)
		}
	}

	if sale.PaymentMode == models.PaymentCredit {
		tag, err := tx.Exec(ctx, `
			UPDATE customers SET balance = balance + $1, updated_at = NOW()
			WHERE shop_id = $2 AND id = $3
		`, sale.GrandTotal, sale.ShopID, sale.CustomerID)
		if err != nil {
			return fmt.Errorf("update customer balance: %w", err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("update customer balance: customer not found in shop")
		}
	}

	return tx.Commit(ctx)
}

const saleColumns = `id, shop_id, customer_id, bill_number, date,
		total_taxable_value, total_cgst, total_sgst, total_gst, bill_discount,
		gross_amount, round_off, grand_total, amount_in_words, payment_mode, bill_type,
		created_at, updated_at`

func scanSale(row interface{ Scan(dest ...any) error }) (*models.Sale, error) {
	sale := &models.Sale{}
	err := row.Scan(&sale.ID, &sale.ShopID, &sale.CustomerID, &sale.BillNumber, &sale.Date,
		&sale.TotalTaxableValue, &sale.TotalCGST, &sale.TotalSGST, &sale.TotalGST, &sale.BillDiscount,
		&sale.GrossAmount, &sale.RoundOff, &sale.GrandTotal, &sale.AmountInWords, &sale.PaymentMode, &sale.BillType,
		&sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *saleRepo) loadItems(ctx context.Context, sale *models.Sale) error {
	rows, err := r.db.Query(ctx, `
		SELECT item_id, name, hsn_code, quantity, unit, rate, tax_type, gst_rate, discount,
			taxable_amount, cgst_amount, sgst_amount, igst_amount, net_amount
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY position ASC
	`, sale.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.SaleItem
		if err := rows.Scan(&item.ItemID, &item.Name, &item.HSNCode, &item.Quantity, &item.Unit, &item.Rate,
			&item.TaxType, &item.GSTRate, &item.Discount,
			&item.TaxableAmount, &item.CGSTAmount, &item.SGSTAmount, &item.IGSTAmount, &item.NetAmount); err != nil {
			return err
		}
		sale.Items = append(sale.Items, item)
	}
	return rows.Err()
}

func (r *saleRepo) GetByID(ctx context.Context, shopID, id uuid.UUID) (*models.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE shop_id = $1 AND id = $2`
	sale, err := scanSale(r.db.QueryRow(ctx, query, shopID, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *saleRepo) List(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE shop_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3
	`
	return r.querySales(ctx, query, shopID, limit, offset)
}

func (r *saleRepo) ListByCustomer(ctx context.Context, shopID, customerID uuid.UUID, limit, offset int) ([]*models.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE shop_id = $1 AND customer_id = $2
		ORDER BY date DESC
		LIMIT $3 OFFSET $4
	`
	return r.querySales(ctx, query, shopID, customerID, limit, offset)
}

func (r *saleRepo) querySales(ctx context.Context, query string, args ...any) ([]*models.Sale, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sale := range sales {
		if err := r.loadItems(ctx, sale); err != nil {
			return nil, err
		}
	}
	return sales, nil
}
