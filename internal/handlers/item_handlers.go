package handlers

import (
	"net/http"

	"kiranamart/internal/common"
	"kiranamart/internal/models"
	"kiranamart/internal/services"

	"github.com/labstack/echo/v4"
)

// ItemHandlers exposes catalog CRUD and low-stock queries.
type ItemHandlers struct {
	itemSvc services.ItemServiceInterface
}

func NewItemHandlers(itemSvc services.ItemServiceInterface) *ItemHandlers {
	return &ItemHandlers{itemSvc: itemSvc}
}

func (h *ItemHandlers) CreateItem(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var item models.Item
	if err := c.Bind(&item); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	item.ShopID = shopID

	if err := h.itemSvc.CreateItem(c.Request().Context(), &item); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandlers) GetItem(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	item, err := h.itemSvc.GetItem(c.Request().Context(), shopID, itemID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// UpdateItem edits catalog fields. Stock is deliberately not editable here;
// it only moves through settlement.
func (h *ItemHandlers) UpdateItem(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var item models.Item
	if err := c.Bind(&item); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	item.ID = itemID
	item.ShopID = shopID

	if err := h.itemSvc.UpdateItem(c.Request().Context(), &item); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandlers) DeleteItem(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	itemID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.itemSvc.DeleteItem(c.Request().Context(), shopID, itemID); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ItemHandlers) ListItems(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := queryPagination(c)
	items, err := h.itemSvc.ListItems(c.Request().Context(), shopID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *ItemHandlers) ListLowStockItems(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	items, err := h.itemSvc.ListLowStockItems(c.Request().Context(), shopID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
}
