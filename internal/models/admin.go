package models

import (
	"time"

	"github.com/google/uuid"
)

// ShopAdmin is the owner/operator account of one shop. Status mirrors the
// shop's approval status for quick lookup at login time.
type ShopAdmin struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ShopID       uuid.UUID `json:"shop_id" db:"shop_id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SuperAdmin is a platform operator; not scoped to any shop.
type SuperAdmin struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
