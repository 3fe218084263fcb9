package handlers

import (
	"net/http"

	"kiranamart/internal/common"
	"kiranamart/internal/services"

	"github.com/labstack/echo/v4"
)

// ShopHandlers exposes the shop's own profile and logo upload.
type ShopHandlers struct {
	shopSvc services.ShopServiceInterface
}

func NewShopHandlers(shopSvc services.ShopServiceInterface) *ShopHandlers {
	return &ShopHandlers{shopSvc: shopSvc}
}

func (h *ShopHandlers) GetMe(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	shop, err := h.shopSvc.GetShop(c.Request().Context(), shopID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, shop)
}

// UploadLogo accepts a multipart "logo" file, stores it and returns the
// presigned URL saved on the shop profile.
func (h *ShopHandlers) UploadLogo(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		return common.SendValidationError(c, "logo", "logo file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return common.SendClientError(c, "could not read uploaded file")
	}
	defer file.Close()

	url, err := h.shopSvc.UploadLogo(c.Request().Context(), shopID, file,
		fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"logo_url": url,
	})
}

// RemoveLogo deletes the uploaded logo and clears it from the profile.
func (h *ShopHandlers) RemoveLogo(c echo.Context) error {
	shopID, ok := common.GetShopIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.shopSvc.RemoveLogo(c.Request().Context(), shopID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}
