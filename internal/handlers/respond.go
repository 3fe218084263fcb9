package handlers

import (
	"errors"
	"strconv"

	"kiranamart/internal/common"
	"kiranamart/internal/services"

	"github.com/labstack/echo/v4"
)

// respondServiceError translates service-layer errors into the shared error
// envelope so every handler maps failures the same way.
func respondServiceError(c echo.Context, err error) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return common.SendValidationError(c, ve.Field, ve.Message)
	}
	var nfe *services.NotFoundError
	if errors.As(err, &nfe) {
		return common.SendNotFoundError(c, nfe.Resource)
	}
	var ce *services.ConflictError
	if errors.As(err, &ce) {
		return common.SendConflictError(c, ce.Message)
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		return common.SendUnauthorizedError(c)
	}
	if errors.Is(err, services.ErrShopNotApproved) {
		return common.SendForbiddenError(c, "shop is awaiting approval")
	}
	if errors.Is(err, services.ErrRateLimited) {
		return common.SendRateLimitError(c, err.Error())
	}
	c.Logger().Error(err)
	return common.SendServerError(c, "operation could not be completed")
}

// queryPagination reads limit/offset query params and clamps them to the
// shared bounds. Absent or malformed values fall back to the defaults.
func queryPagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, _ = common.ValidatePaginationParams(limit, offset)
	return limit, offset
}
