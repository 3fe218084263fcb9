package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment records money collected against a customer's outstanding balance.
// Recording one atomically decrements the customer balance by Amount.
type Payment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ShopID     uuid.UUID `json:"shop_id" db:"shop_id"`
	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`
	Amount     float64   `json:"amount" db:"amount"`
	Mode       string    `json:"mode" db:"mode"` // Cash | Online
	Note       *string   `json:"note" db:"note"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
