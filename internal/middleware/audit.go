package middleware

import (
	"time"

	"kiranamart/internal/common"

	"github.com/labstack/echo/v4"
)

// AuditRequest logs one line per mutating request with the acting identity,
// so shop-admin writes can be traced after the fact. Reads are skipped to
// keep the log usable.
func AuditRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			method := c.Request().Method
			if method == "GET" || method == "HEAD" || method == "OPTIONS" {
				return err
			}

			ctx := c.Request().Context()
			actor := "anonymous"
			if actorID, ok := common.GetActorIDFromContext(ctx); ok {
				actor = actorID.String()
			}
			shop := "-"
			if shopID, ok := common.GetShopIDFromContext(ctx); ok {
				shop = shopID.String()
			}

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			c.Logger().Infof("audit actor=%s shop=%s %s %s status=%d took=%s",
				actor, shop, method, c.Path(), status, time.Since(start))
			return err
		}
	}
}
