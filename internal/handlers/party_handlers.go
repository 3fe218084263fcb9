package handlers

import (
	"net/http"

	"kiranamart/internal/common"
	"kiranamart/internal/models"
	"kiranamart/internal/services"

	"github.com/labstack/echo/v4"
)

// PartyHandlers exposes supplier ledger CRUD.
type PartyHandlers struct {
	partySvc services.PartyServiceInterface
}

func NewPartyHandlers(partySvc services.PartyServiceInterface) *PartyHandlers {
	return &PartyHandlers{partySvc: partySvc}
}

func (h *PartyHandlers) CreateParty(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var party models.Party
	if err := c.Bind(&party); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	party.ShopID = shopID

	if err := h.partySvc.CreateParty(c.Request().Context(), &party); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, party)
}

func (h *PartyHandlers) GetParty(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	partyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	party, err := h.partySvc.GetParty(c.Request().Context(), shopID, partyID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, party)
}

func (h *PartyHandlers) UpdateParty(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	partyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var party models.Party
	if err := c.Bind(&party); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	party.ID = partyID
	party.ShopID = shopID

	if err := h.partySvc.UpdateParty(c.Request().Context(), &party); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, party)
}

func (h *PartyHandlers) DeleteParty(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	partyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.partySvc.DeleteParty(c.Request().Context(), shopID, partyID); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PartyHandlers) ListParties(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := queryPagination(c)
	parties, err := h.partySvc.ListParties(c.Request().Context(), shopID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"parties": parties,
		"limit":   limit,
		"offset":  offset,
	})
}
