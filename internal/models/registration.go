package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationRequest is a pending shop signup awaiting OTP verification.
// The OTP itself lives in redis with a TTL; only the request metadata is
// persisted so a resend can upsert the same row.
type RegistrationRequest struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ShopName     string    `json:"shop_name" db:"shop_name"`
	OwnerName    string    `json:"owner_name" db:"owner_name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Address      *string   `json:"address" db:"address"`
	City         *string   `json:"city" db:"city"`
	State        *string   `json:"state" db:"state"`
	Status       string    `json:"status" db:"status"`
	ShopID       *string   `json:"shop_id" db:"shop_id"`     // assigned after verification
	ShopCode     *string   `json:"shop_code" db:"shop_code"` // assigned after verification
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
