package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"kiranamart/internal/common"
	"kiranamart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jung-kurt/gofpdf"
)

const invoiceBucket = "invoice-archive"

type PDFServiceInterface interface {
	RenderInvoice(ctx context.Context, shopID, saleID uuid.UUID) ([]byte, error)
	ArchiveInvoicePDF(ctx context.Context, shopID, saleID uuid.UUID) (string, error)
}

type pdfService struct {
	saleRepo     repositories.SaleRepository
	shopRepo     repositories.ShopRepository
	customerRepo repositories.CustomerRepository
	storage      MinioService
}

// NewPDFService creates a new PDF service
func NewPDFService(saleRepo repositories.SaleRepository, shopRepo repositories.ShopRepository,
	customerRepo repositories.CustomerRepository, storage MinioService) PDFServiceInterface {
	return &pdfService{
		saleRepo:     saleRepo,
		shopRepo:     shopRepo,
		customerRepo: customerRepo,
		storage:      storage,
	}
}

// RenderInvoice lays out a settled sale as an A4 tax invoice.
func (s *pdfService) RenderInvoice(ctx context.Context, shopID, saleID uuid.UUID) ([]byte, error) {
	sale, err := s.saleRepo.GetByID(ctx, shopID, saleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "sale"}
		}
		return nil, err
	}
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, shopID, sale.CustomerID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, shop.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if addr := common.SafeString(shop.Address); addr != "" {
		pdf.CellFormat(0, 5, addr, "", 1, "C", false, 0, "")
	}
	cityLine := common.SafeString(shop.City)
	if state := common.SafeString(shop.State); state != "" {
		if cityLine != "" {
			cityLine += ", "
		}
		cityLine += state
	}
	if cityLine != "" {
		pdf.CellFormat(0, 5, cityLine, "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, sale.BillType, "T", 1, "C", false, 0, "")

	// Bill meta
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(95, 6, fmt.Sprintf("Bill No: %s", sale.BillNumber), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Date: %s", sale.Date.Format("02-01-2006 15:04")), "", 1, "R", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Customer: %s", customer.Name), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Payment: %s", sale.PaymentMode), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	// Line table header
	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	headers := []struct {
		label string
		width float64
	}{
		{"#", 8},
		{"Item", 50},
		{"HSN", 16},
		{"Qty", 16},
		{"Rate", 20},
		{"Taxable", 24},
		{"CGST", 18},
		{"SGST", 18},
		{"Amount", 20},
	}
	for _, h := range headers {
		pdf.CellFormat(h.width, 7, h.label, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// Lines
	pdf.SetFont("Arial", "", 8)
	for i, item := range sale.Items {
		pdf.CellFormat(8, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(16, 6, item.HSNCode, "1", 0, "C", false, 0, "")
		pdf.CellFormat(16, 6, fmt.Sprintf("%.2f %s", item.Quantity, item.Unit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", item.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(24, 6, fmt.Sprintf("%.2f", item.TaxableAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(18, 6, fmt.Sprintf("%.2f", item.CGSTAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(18, 6, fmt.Sprintf("%.2f", item.SGSTAmount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", item.NetAmount), "1", 1, "R", false, 0, "")
	}

	// Totals
	pdf.Ln(2)
	s.totalRow(pdf, "Total Taxable Value", sale.TotalTaxableValue, false)
	s.totalRow(pdf, "CGST", sale.TotalCGST, false)
	s.totalRow(pdf, "SGST", sale.TotalSGST, false)
	if sale.BillDiscount > 0 {
		s.totalRow(pdf, "Bill Discount", -sale.BillDiscount, false)
	}
	s.totalRow(pdf, "Round Off", sale.RoundOff, false)
	s.totalRow(pdf, "Grand Total", sale.GrandTotal, true)

	pdf.Ln(3)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, sale.AmountInWords, "", 1, "L", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 5, "This is a computer generated invoice.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *pdfService) totalRow(pdf *gofpdf.Fpdf, label string, amount float64, bold bool) {
	if bold {
		pdf.SetFont("Arial", "B", 10)
	} else {
		pdf.SetFont("Arial", "", 9)
	}
	pdf.CellFormat(150, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", amount), "", 1, "R", false, 0, "")
}

// ArchiveInvoicePDF renders the invoice and stores it in object storage,
// keyed by shop and bill number. Returns the object name.
func (s *pdfService) ArchiveInvoicePDF(ctx context.Context, shopID, saleID uuid.UUID) (string, error) {
	data, err := s.RenderInvoice(ctx, shopID, saleID)
	if err != nil {
		return "", err
	}

	sale, err := s.saleRepo.GetByID(ctx, shopID, saleID)
	if err != nil {
		return "", err
	}

	if err := s.storage.EnsureBucketExists(ctx, invoiceBucket); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s/%s.pdf", shopID.String(), sale.BillNumber)
	if err := s.storage.UploadObject(ctx, invoiceBucket, objectName, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		return "", err
	}
	return objectName, nil
}
