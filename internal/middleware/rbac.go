package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole enforces that the authenticated request carries one of the
// expected roles. Runs after JWT, which populates the role context key.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value, ok := c.Get(ContextKeyUserRole).(string)
			if !ok || value == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "missing role"})
			}
			for _, role := range roles {
				if value == role {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("role %s is not allowed here", value)})
		}
	}
}
