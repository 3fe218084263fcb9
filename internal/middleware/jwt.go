package middleware

import (
	"context"
	"net/http"
	"strings"

	"kiranamart/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates the session token and loads actor ID, shop ID
// and role into the request context. The token travels in the "token"
// cookie set at login; an Authorization: Bearer header is accepted as a
// fallback for API clients.
func JWTMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := ""
			if cookie, err := c.Cookie("token"); err == nil && cookie.Value != "" {
				tokenString = cookie.Value
			} else {
				authHeader := c.Request().Header.Get("Authorization")
				if authHeader == "" {
					return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
				}
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
				if tokenString == authHeader {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
				}
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			if err := loadClaims(c, claims); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// loadClaims copies the identity claims into the request context.
func loadClaims(c echo.Context, claims jwt.MapClaims) error {
	sub, ok := claims["sub"].(string)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing subject in token")
	}
	actorID, err := uuid.Parse(sub)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject format")
	}

	role, ok := claims["role"].(string)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing role in token")
	}

	ctx := context.WithValue(c.Request().Context(), common.ActorIDKey, actorID)
	ctx = context.WithValue(ctx, common.RoleKey, role)

	// Super admins have no shop; everyone else must.
	if role != common.RoleSuperAdmin {
		shopClaim, ok := claims["shop_id"].(string)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing shop_id in token")
		}
		shopID, err := uuid.Parse(shopClaim)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid shop_id format")
		}
		ctx = context.WithValue(ctx, common.ShopIDKey, shopID)
	}

	c.SetRequest(c.Request().WithContext(ctx))
	return nil
}

// PortalClaims runs after the echo-jwt validator on the customer portal
// group and loads the already-verified token's claims into the request
// context.
func PortalClaims() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}
			if err := loadClaims(c, claims); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireRole gates a route group to the given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing role")
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}
