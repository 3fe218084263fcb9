package models

import (
	"time"

	"github.com/google/uuid"
)

// GST registration categories for purchase-side parties.
const (
	GSTTypeRegistered   = "Registered"
	GSTTypeUnregistered = "Unregistered"
	GSTTypeComposition  = "Composition"
)

// Party is a purchase-side supplier ledger for one shop. Balance starts at
// the opening balance and accumulates purchase transactions.
type Party struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ShopID    uuid.UUID `json:"shop_id" db:"shop_id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Address   string    `json:"address" db:"address"`
	Email     string    `json:"email" db:"email"`
	GSTIN     string    `json:"gstin" db:"gstin"`
	GSTType   string    `json:"gst_type" db:"gst_type"`
	Balance   float64   `json:"balance" db:"balance"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
