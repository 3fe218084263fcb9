package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Mailer sends the registration and approval mails. Implemented by the
// SMTP mailer service; an interface here keeps the worker free of a
// dependency on the service layer.
type Mailer interface {
	SendOTPEmail(to, ownerName, otp string) error
	SendShopApprovedEmail(to, ownerName, shopName, shopCode string) error
}

// InvoiceArchiver renders a settled invoice to PDF and stores it in
// object storage.
type InvoiceArchiver interface {
	ArchiveInvoicePDF(ctx context.Context, shopID, saleID uuid.UUID) (string, error)
}

// EmailHandlers processes the mail task types.
type EmailHandlers struct {
	mailer Mailer
}

func NewEmailHandlers(mailer Mailer) *EmailHandlers {
	return &EmailHandlers{mailer: mailer}
}

func (h *EmailHandlers) OTPEmailHandler(ctx context.Context, t *asynq.Task) error {
	var payload OTPEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal OTP mail payload: %w", err)
	}
	if err := h.mailer.SendOTPEmail(payload.Email, payload.OwnerName, payload.OTP); err != nil {
		return fmt.Errorf("failed to send OTP mail to %s: %w", payload.Email, err)
	}
	log.Printf("Sent OTP mail to %s", payload.Email)
	return nil
}

func (h *EmailHandlers) ShopApprovedEmailHandler(ctx context.Context, t *asynq.Task) error {
	var payload ShopApprovedEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal approval mail payload: %w", err)
	}
	if err := h.mailer.SendShopApprovedEmail(payload.Email, payload.OwnerName, payload.ShopName, payload.ShopCode); err != nil {
		return fmt.Errorf("failed to send approval mail to %s: %w", payload.Email, err)
	}
	log.Printf("Sent approval mail to %s", payload.Email)
	return nil
}

// ArchiveHandlers processes invoice archive tasks.
type ArchiveHandlers struct {
	archiver InvoiceArchiver
}

func NewArchiveHandlers(archiver InvoiceArchiver) *ArchiveHandlers {
	return &ArchiveHandlers{archiver: archiver}
}

func (h *ArchiveHandlers) InvoiceArchivePDFHandler(ctx context.Context, t *asynq.Task) error {
	var payload InvoiceArchivePDFPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal invoice archive payload: %w", err)
	}
	objectName, err := h.archiver.ArchiveInvoicePDF(ctx, payload.ShopID, payload.SaleID)
	if err != nil {
		return fmt.Errorf("failed to archive invoice %s: %w", payload.SaleID, err)
	}
	log.Printf("Archived invoice %s as %s", payload.SaleID, objectName)
	return nil
}
