package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment modes accepted at the point of sale.
const (
	PaymentCash   = "Cash"
	PaymentOnline = "Online"
	PaymentCredit = "Credit"
)

// DefaultBillType is the label printed on a standard GST invoice.
const DefaultBillType = "Tax Invoice"

// SaleItem is one settled line of an invoice, carrying the cart snapshot
// (rate, tax type, GST rate) plus the calculator's tax-resolved amounts.
type SaleItem struct {
	ItemID        uuid.UUID `json:"item_id" db:"item_id"`
	Name          string    `json:"name" db:"name"`
	HSNCode       string    `json:"hsn_code" db:"hsn_code"`
	Quantity      float64   `json:"quantity" db:"quantity"`
	Unit          string    `json:"unit" db:"unit"`
	Rate          float64   `json:"rate" db:"rate"`
	TaxType       string    `json:"tax_type" db:"tax_type"`
	GSTRate       float64   `json:"gst_rate" db:"gst_rate"`
	Discount      float64   `json:"discount" db:"discount"`
	TaxableAmount float64   `json:"taxable_amount" db:"taxable_amount"`
	CGSTAmount    float64   `json:"cgst_amount" db:"cgst_amount"`
	SGSTAmount    float64   `json:"sgst_amount" db:"sgst_amount"`
	IGSTAmount    float64   `json:"igst_amount" db:"igst_amount"`
	NetAmount     float64   `json:"net_amount" db:"net_amount"`
}

// Sale is the settled, immutable record of one bill. Never updated or
// deleted after creation; the sales table is append-only.
type Sale struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	ShopID     uuid.UUID  `json:"shop_id" db:"shop_id"`
	CustomerID uuid.UUID  `json:"customer_id" db:"customer_id"`
	BillNumber string     `json:"bill_number" db:"bill_number"`
	Date       time.Time  `json:"date" db:"date"`
	Items      []SaleItem `json:"items"`

	TotalTaxableValue float64 `json:"total_taxable_value" db:"total_taxable_value"`
	TotalCGST         float64 `json:"total_cgst" db:"total_cgst"`
	TotalSGST         float64 `json:"total_sgst" db:"total_sgst"`
	TotalGST          float64 `json:"total_gst" db:"total_gst"`
	BillDiscount      float64 `json:"bill_discount" db:"bill_discount"`

	GrossAmount   float64 `json:"gross_amount" db:"gross_amount"`
	RoundOff      float64 `json:"round_off" db:"round_off"`
	GrandTotal    float64 `json:"grand_total" db:"grand_total"`
	AmountInWords string  `json:"amount_in_words" db:"amount_in_words"`

	PaymentMode string    `json:"payment_mode" db:"payment_mode"`
	BillType    string    `json:"bill_type" db:"bill_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
