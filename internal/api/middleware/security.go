package middleware

import (
	"github.com/labstack/echo/v4"
)

// contentSecurityPolicy allows remote posters and the inline page styles,
// nothing else from third parties.
const contentSecurityPolicy = "default-src 'self'; img-src * data:; style-src 'self' 'unsafe-inline'; " +
	"connect-src 'self'; frame-ancestors 'self'; form-action 'self'"

func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// Prevent MIME type sniffing
			h.Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			h.Set("X-Frame-Options", "SAMEORIGIN")

			// Control referrer information
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			h.Set("Content-Security-Policy", contentSecurityPolicy)

			// Every page depends on the caller's session.
			h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			h.Set("Pragma", "no-cache")

			return next(c)
		}
	}
}
