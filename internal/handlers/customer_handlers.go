package handlers

import (
	"net/http"

	"kiranamart/internal/common"
	"kiranamart/internal/models"
	"kiranamart/internal/services"

	"github.com/labstack/echo/v4"
)

// CustomerHandlers exposes the customer ledger: CRUD, payment recording and
// per-customer sale history.
type CustomerHandlers struct {
	customerSvc   services.CustomerServiceInterface
	settlementSvc services.SettlementServiceInterface
}

func NewCustomerHandlers(customerSvc services.CustomerServiceInterface, settlementSvc services.SettlementServiceInterface) *CustomerHandlers {
	return &CustomerHandlers{customerSvc: customerSvc, settlementSvc: settlementSvc}
}

type createCustomerRequest struct {
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Address  *string `json:"address"`
	Password string  `json:"password"`
}

func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req createCustomerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}

	customer := &models.Customer{
		ShopID:  shopID,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if err := h.customerSvc.CreateCustomer(c.Request().Context(), customer, req.Password); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	customer, err := h.customerSvc.GetCustomer(c.Request().Context(), shopID, customerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var customer models.Customer
	if err := c.Bind(&customer); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	customer.ID = customerID
	customer.ShopID = shopID

	if err := h.customerSvc.UpdateCustomer(c.Request().Context(), &customer); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.customerSvc.DeleteCustomer(c.Request().Context(), shopID, customerID); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := queryPagination(c)
	customers, err := h.customerSvc.ListCustomers(c.Request().Context(), shopID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"limit":     limit,
		"offset":    offset,
	})
}

// RecordPayment books money received against a customer's balance.
func (h *CustomerHandlers) RecordPayment(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var payment models.Payment
	if err := c.Bind(&payment); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	payment.ShopID = shopID
	payment.CustomerID = customerID

	if err := h.customerSvc.RecordPayment(c.Request().Context(), shopID, &payment); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *CustomerHandlers) ListPayments(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
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

func (h *CustomerHandlers) ListCustomerSales(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
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
