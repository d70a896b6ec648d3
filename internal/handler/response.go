package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse describes the standard envelope returned by the API. Warning
// carries non-fatal advisories, e.g. a duplicate email noticed during a write.
type APIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Data    any     `json:"data,omitempty"`
	Warning *string `json:"warning,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	return SuccessWithWarning(c, status, message, data, nil)
}

// SuccessWithWarning sends a successful response carrying a non-fatal warning.
func SuccessWithWarning(c echo.Context, status int, message string, data any, warning *string) error {
	if status == 0 {
		status = http.StatusOK
	}
	payload := APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
		Warning: warning,
	}
	return c.JSON(status, payload)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	payload := APIResponse{
		Status:  "error",
		Message: message,
	}
	return c.JSON(status, payload)
}
