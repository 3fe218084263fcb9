package handlers

import (
	"net/http"

	"kiranamart/internal/common"
	"kiranamart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PortalHandlers serves the customer-facing portal: the logged-in customer's
// own profile, bills and payment history. The customer id comes from the
// token, never from the URL.
type PortalHandlers struct {
	customerSvc   services.CustomerServiceInterface
	settlementSvc services.SettlementServiceInterface
}

func NewPortalHandlers(customerSvc services.CustomerServiceInterface, settlementSvc services.SettlementServiceInterface) *PortalHandlers {
	return &PortalHandlers{customerSvc: customerSvc, settlementSvc: settlementSvc}
}

func (h *PortalHandlers) portalIdentity(c echo.Context) (shopID, customerID uuid.UUID, ok bool) {
	ctx := c.Request().Context()
	sid, ok1 := common.GetShopIDFromContext(ctx)
	cid, ok2 := common.GetActorIDFromContext(ctx)
	return sid, cid, ok1 && ok2
}

func (h *PortalHandlers) Me(c echo.Context) error {
	shopID, customerID, ok := h.portalIdentity(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customer, err := h.customerSvc.GetCustomer(c.Request().Context(), shopID, customerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *PortalHandlers) MySales(c echo.Context) error {
	shopID, customerID, ok := h.portalIdentity(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := queryPagination(c)
	sales, err := h.settlementSvc.ListSalesByCustomer(c.Request().Context(), shopID, customerID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sales":  sales,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *PortalHandlers) MyPayments(c echo.Context) error {
	shopID, customerID, ok := h.portalIdentity(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := queryPagination(c)
	payments, err := h.customerSvc.ListPayments(c.Request().Context(), shopID, customerID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"limit":    limit,
		"offset":   offset,
	})
}
