package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// maxRequestIDLength bounds caller-provided identifiers so log lines stay sane.
const maxRequestIDLength = 64

// RequestID injects an identifier for traceability. A caller-provided
// X-Request-ID is kept as long as it fits; otherwise a fresh one is generated.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(echo.HeaderXRequestID)
			if rid == "" || len(rid) > maxRequestIDLength {
				rid = uuid.NewString()
			}

			c.Set(ContextKeyRequestID, rid)
			c.Response().Header().Set(echo.HeaderXRequestID, rid)

			return next(c)
		}
	}
}

// RequestIDFromContext extracts the request identifier if available.
func RequestIDFromContext(c echo.Context) string {
	if val, ok := c.Get(ContextKeyRequestID).(string); ok {
		return val
	}
	return ""
}
