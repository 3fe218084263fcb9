package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a shop's buyer. Balance is the running ledger: positive means
// the customer owes the shop (credit sales), negative means the shop owes
// the customer. Mutated only through settlement and payment recording.
type Customer struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ShopID       uuid.UUID `json:"shop_id" db:"shop_id"`
	Name         string    `json:"name" db:"name"`
	Phone        string    `json:"phone" db:"phone"` // unique within the shop
	Address      *string   `json:"address" db:"address"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Balance      float64   `json:"balance" db:"balance"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
