package handlers

import (
	"fmt"
	"net/http"

	"kiranamart/internal/common"
	"kiranamart/internal/jobs"
	"kiranamart/internal/services"

	"github.com/labstack/echo/v4"
)

// SaleHandlers exposes billing: settlement, sale queries and invoice PDFs.
type SaleHandlers struct {
	settlementSvc services.SettlementServiceInterface
	pdfSvc        services.PDFServiceInterface
	asynqClient   services.AsynqClient
	archivePDF    bool
}

func NewSaleHandlers(settlementSvc services.SettlementServiceInterface, pdfSvc services.PDFServiceInterface, asynqClient services.AsynqClient, archivePDF bool) *SaleHandlers {
	return &SaleHandlers{
		settlementSvc: settlementSvc,
		pdfSvc:        pdfSvc,
		asynqClient:   asynqClient,
		archivePDF:    archivePDF,
	}
}

// CreateSale settles a cart into a finalized sale. Totals in the request are
// ignored; the server recomputes everything from the line items.
func (h *SaleHandlers) CreateSale(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.SettleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}

	sale, err := h.settlementSvc.Settle(c.Request().Context(), shopID, &req)
	if err != nil {
		return respondServiceError(c, err)
	}

	if h.archivePDF && h.asynqClient != nil {
		task, err := jobs.NewInvoiceArchivePDFTask(shopID, sale.ID)
		if err == nil {
			_, err = h.asynqClient.EnqueueContext(c.Request().Context(), task)
		}
		if err != nil {
			c.Logger().Errorf("enqueue invoice archive for sale %s: %v", sale.ID, err)
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"sale":    sale,
	})
}

func (h *SaleHandlers) ListSales(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := queryPagination(c)
	sales, err := h.settlementSvc.ListSales(c.Request().Context(), shopID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sales":  sales,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *SaleHandlers) GetSale(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	saleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	sale, err := h.settlementSvc.GetSale(c.Request().Context(), shopID, saleID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, sale)
}

// DownloadInvoicePDF renders the GST invoice for a settled sale and streams
// it back as application/pdf.
func (h *SaleHandlers) DownloadInvoicePDF(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	saleID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	sale, err := h.settlementSvc.GetSale(c.Request().Context(), shopID, saleID)
	if err != nil {
		return respondServiceError(c, err)
	}

	data, err := h.pdfSvc.RenderInvoice(c.Request().Context(), shopID, saleID)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`inline; filename="%s.pdf"`, sale.BillNumber))
	return c.Blob(http.StatusOK, "application/pdf", data)
}
