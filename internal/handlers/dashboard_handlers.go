package handlers

import (
	"net/http"
	"strconv"

	"kiranamart/internal/analytics"
	"kiranamart/internal/common"

	"github.com/labstack/echo/v4"
)

// DashboardHandlers serves the shop-admin dashboard figures.
type DashboardHandlers struct {
	dashboardSvc *analytics.DashboardService
}

func NewDashboardHandlers(dashboardSvc *analytics.DashboardService) *DashboardHandlers {
	return &DashboardHandlers{dashboardSvc: dashboardSvc}
}

func (h *DashboardHandlers) GetSummary(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	summary, err := h.dashboardSvc.GetSummary(c.Request().Context(), shopID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandlers) GetSalesTrend(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	days, _ := strconv.Atoi(c.QueryParam("days"))
	trend, err := h.dashboardSvc.SalesTrend(c.Request().Context(), shopID, days)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"trend": trend})
}
