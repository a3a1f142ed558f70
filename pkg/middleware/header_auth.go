package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const HeaderUserID = "X-User-Id"

// HeaderAuth trusts the X-User-Id header set by the fronting gateway. When
// enabled, requests without it get 401 and the cancellation endpoints only
// serve the caller's own userId. When disabled it passes through.
func HeaderAuth(enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return next(c)
			}
			uid := c.Request().Header.Get(HeaderUserID)
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing " + HeaderUserID + " header"})
			}
			c.Set(uidKey, uid)
			c.Set(verifiedKey, true)
			return next(c)
		}
	}
}
