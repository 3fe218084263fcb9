package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop statuses driven by the super-admin approval flow.
const (
	ShopStatusPending  = "pending"
	ShopStatusApproved = "approved"
	ShopStatusRejected = "rejected"
)

type Shop struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ShopID    string    `json:"shop_id" db:"shop_id"`     // human code, SHOP001
	ShopCode  string    `json:"shop_code" db:"shop_code"` // 3-letter customer login code
	Name      string    `json:"name" db:"name"`
	Address   *string   `json:"address" db:"address"`
	City      *string   `json:"city" db:"city"`
	State     *string   `json:"state" db:"state"`
	LogoURL   *string   `json:"logo_url" db:"logo_url"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
