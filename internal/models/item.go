package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit pairs the base stock-keeping unit with an optional secondary selling
// or purchase unit. ConversionFactor is how many base units make one
// secondary unit (1 Box = 12 Bottles).
type Unit struct {
	BaseUnit         string  `json:"base_unit" db:"base_unit"`
	SecondaryUnit    *string `json:"secondary_unit" db:"secondary_unit"`
	ConversionFactor float64 `json:"conversion_factor" db:"conversion_factor"`
}

// Price is an amount plus whether GST is already contained in it.
type Price struct {
	Amount  float64 `json:"amount" db:"amount"`
	TaxType string  `json:"tax_type" db:"tax_type"` // inclusive | exclusive
}

// Item is a sellable catalog product belonging to one shop. StockQuantity
// and LowStockLevel are ALWAYS stored in base units; conversion from the
// secondary unit happens once, at write time.
type Item struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ShopID        uuid.UUID  `json:"shop_id" db:"shop_id"`
	Name          string     `json:"name" db:"name"`
	HSNCode       *string    `json:"hsn_code" db:"hsn_code"`
	Category      *string    `json:"category" db:"category"`
	Unit          Unit       `json:"unit"`
	StockQuantity float64    `json:"stock_quantity" db:"stock_quantity"`
	LowStockLevel float64    `json:"low_stock_level" db:"low_stock_level"`
	PurchasePrice Price      `json:"purchase_price"`
	SalePrice     Price      `json:"sale_price"`
	GSTSlab       string     `json:"gst_slab" db:"gst_slab"` // "GST@18%", "Exempted", ...
	ImageURL      *string    `json:"image_url" db:"image_url"`
	ExpiryDate    *time.Time `json:"expiry_date" db:"expiry_date"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// SellingUnit is the label shown on a bill line: the secondary unit when one
// is configured, otherwise the base unit.
func (i *Item) SellingUnit() string {
	if i.Unit.SecondaryUnit != nil && *i.Unit.SecondaryUnit != "" {
		return *i.Unit.SecondaryUnit
	}
	return i.Unit.BaseUnit
}
