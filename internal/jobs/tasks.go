package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type definitions
const (
	TypeOTPEmail          = "email:otp"
	TypeShopApprovedEmail = "email:shop_approved"
	TypeLowStockAlert     = "alerts:low_stock"
	TypeInvoiceArchivePDF = "invoice:archive_pdf"
)

// OTPEmailPayload defines the payload for registration OTP mail
type OTPEmailPayload struct {
	Email     string `json:"email"`
	OwnerName string `json:"owner_name"`
	OTP       string `json:"otp"`
}

// ShopApprovedEmailPayload defines the payload for approval mail
type ShopApprovedEmailPayload struct {
	Email     string `json:"email"`
	OwnerName string `json:"owner_name"`
	ShopName  string `json:"shop_name"`
	ShopCode  string `json:"shop_code"`
}

// LowStockAlertPayload defines the payload for a per-shop low-stock scan
type LowStockAlertPayload struct {
	ShopID uuid.UUID `json:"shop_id"`
}

// InvoiceArchivePDFPayload defines the payload for archiving a settled
// invoice's PDF to object storage
type InvoiceArchivePDFPayload struct {
	ShopID uuid.UUID `json:"shop_id"`
	SaleID uuid.UUID `json:"sale_id"`
}

// NewOTPEmailTask creates a new OTP mail task
func NewOTPEmailTask(email, ownerName, otp string) (*asynq.Task, error) {
	data, err := json.Marshal(OTPEmailPayload{Email: email, OwnerName: ownerName, OTP: otp})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOTPEmail, data), nil
}

// NewShopApprovedEmailTask creates a new approval mail task
func NewShopApprovedEmailTask(email, ownerName, shopName, shopCode string) (*asynq.Task, error) {
	data, err := json.Marshal(ShopApprovedEmailPayload{Email: email, OwnerName: ownerName, ShopName: shopName, ShopCode: shopCode})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeShopApprovedEmail, data), nil
}

// NewLowStockAlertTask creates a new low-stock scan task for one shop
func NewLowStockAlertTask(shopID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(LowStockAlertPayload{ShopID: shopID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLowStockAlert, data), nil
}

// NewInvoiceArchivePDFTask creates a new invoice archive task
func NewInvoiceArchivePDFTask(shopID, saleID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(InvoiceArchivePDFPayload{ShopID: shopID, SaleID: saleID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInvoiceArchivePDF, data), nil
}
