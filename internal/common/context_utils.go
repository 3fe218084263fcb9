package common

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	ActorIDKey contextKey = "actor_id"
	ShopIDKey  contextKey = "shop_id"
	RoleKey    contextKey = "role"
)

// Actor roles carried in the auth token.
const (
	RoleShopAdmin  = "shopadmin"
	RoleSuperAdmin = "superadmin"
	RoleCustomer   = "customer"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendConflictError sends a conflict error response
func SendConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, CreateErrorResponse("CONFLICT", message, nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
}

// SendForbiddenError sends a forbidden error response
func SendForbiddenError(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, CreateErrorResponse("FORBIDDEN", message, nil))
}

// SendRateLimitError sends a too-many-requests error response
func SendRateLimitError(c echo.Context, message string) error {
	return c.JSON(http.StatusTooManyRequests, CreateErrorResponse("RATE_LIMITED", message, nil))
}

// ValidateUUID validates UUID format
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}

	return id, nil
}

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{10}[0-9]{1}[A-Z]{1}[A-Z0-9]{1}$`)

// ValidateGSTIN validates GSTIN format. Empty GSTIN is allowed: registration
// is optional for unregistered parties.
func ValidateGSTIN(gstin, fieldName string) error {
	if strings.TrimSpace(gstin) == "" {
		return nil
	}

	// GSTIN format: 22AAAAA1234A1ZA (15 characters)
	if len(gstin) != 15 {
		return fmt.Errorf("%s must be exactly 15 characters", fieldName)
	}

	if !gstinPattern.MatchString(gstin) {
		return fmt.Errorf("%s has invalid GSTIN format", fieldName)
	}

	return nil
}

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidatePhone validates a 10-digit Indian mobile number.
func ValidatePhone(phone, fieldName string) error {
	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return fmt.Errorf("%s must be a 10-digit number", fieldName)
	}
	return nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidatePaymentMode validates point-of-sale payment modes
func ValidatePaymentMode(mode string) error {
	if mode != "Cash" && mode != "Online" && mode != "Credit" {
		return fmt.Errorf("payment mode must be one of: Cash, Online, Credit")
	}
	return nil
}

// ValidateTaxType validates price tax type flags
func ValidateTaxType(taxType, fieldName string) error {
	if taxType != "inclusive" && taxType != "exclusive" {
		return fmt.Errorf("%s must be either 'inclusive' or 'exclusive'", fieldName)
	}
	return nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetActorIDFromContext extracts the acting user's ID from the request context
func GetActorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	actorID, ok := ctx.Value(ActorIDKey).(uuid.UUID)
	return actorID, ok
}

// GetShopIDFromContext extracts the acting shop's ID from the request context.
// Every shop-scoped read and write must filter by this value; it is the
// boundary that keeps one shop's data from leaking into another's.
func GetShopIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	shopID, ok := ctx.Value(ShopIDKey).(uuid.UUID)
	return shopID, ok
}

// GetRoleFromContext extracts the acting user's role from the request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, fmt.Errorf("offset cannot exceed 1,000,000")
	}

	return limit, offset, nil
}
