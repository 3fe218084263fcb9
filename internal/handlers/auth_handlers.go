package handlers

import (
	"net/http"
	"time"

	"kiranamart/internal/common"
	"kiranamart/internal/services"

	"github.com/labstack/echo/v4"
)

const tokenCookieName = "token"

// AuthHandlers covers shop registration, OTP verification, the three login
// flows and the super-admin approval queue.
type AuthHandlers struct {
	registrationSvc services.RegistrationServiceInterface
	authSvc         services.AuthServiceInterface
}

func NewAuthHandlers(registrationSvc services.RegistrationServiceInterface, authSvc services.AuthServiceInterface) *AuthHandlers {
	return &AuthHandlers{registrationSvc: registrationSvc, authSvc: authSvc}
}

func setTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RegisterShop accepts a signup form and mails an OTP to the owner.
func (h *AuthHandlers) RegisterShop(c echo.Context) error {
	var req services.RegisterShopRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}

	if err := h.registrationSvc.RegisterShop(c.Request().Context(), &req); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"success": true,
		"message": "verification code sent",
	})
}

// VerifyOTP confirms the emailed code and creates the shop in pending state.
func (h *AuthHandlers) VerifyOTP(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}

	shop, err := h.registrationSvc.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"shop":    shop,
	})
}

func (h *AuthHandlers) LoginShopAdmin(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}

	result, err := h.authSvc.LoginShopAdmin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	setTokenCookie(c, result.Token)
	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandlers) LoginSuperAdmin(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}

	result, err := h.authSvc.LoginSuperAdmin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	setTokenCookie(c, result.Token)
	return c.JSON(http.StatusOK, result)
}

// LoginCustomer authenticates against a shop code plus the customer's phone.
func (h *AuthHandlers) LoginCustomer(c echo.Context) error {
	var req struct {
		ShopCode string `json:"shop_code"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}

	result, err := h.authSvc.LoginCustomer(c.Request().Context(), req.ShopCode, req.Phone, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	setTokenCookie(c, result.Token)
	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandlers) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

func (h *AuthHandlers) ListPendingShops(c echo.Context) error {
	limit, offset := queryPagination(c)
	shops, err := h.registrationSvc.ListPendingShops(c.Request().Context(), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"shops":  shops,
		"limit":  limit,
		"offset": offset,
	})
}

// GetShopDetail returns a shop and its admin contact. The path parameter
// is the human-readable shop id (SHOP007), not the UUID.
func (h *AuthHandlers) GetShopDetail(c echo.Context) error {
	detail, err := h.registrationSvc.GetShopDetail(c.Request().Context(), c.Param("shop_id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ChangePassword lets a logged-in shop admin rotate their own password.
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	actorID, ok := common.GetActorIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}

	if err := h.authSvc.ChangeShopAdminPassword(c.Request().Context(), actorID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// ApproveShop flips a pending shop and its admin to approved. The path
// parameter is the human-readable shop id (SHOP007), not the UUID.
func (h *AuthHandlers) ApproveShop(c echo.Context) error {
	shop, err := h.registrationSvc.ApproveShop(c.Request().Context(), c.Param("shop_id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"shop":    shop,
	})
}

func (h *AuthHandlers) RejectShop(c echo.Context) error {
	shop, err := h.registrationSvc.RejectShop(c.Request().Context(), c.Param("shop_id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"shop":    shop,
	})
}
