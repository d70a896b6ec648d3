package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-tracker/internal/middleware"
	"github.com/octobees/lead-tracker/internal/service"
)

// AdminImportHandler handles CSV ingestion for administrators.
type AdminImportHandler struct {
	leadsService *service.LeadsService
}

// NewAdminImportHandler wires a handler backed by the leads service.
func NewAdminImportHandler(leadsService *service.LeadsService) *AdminImportHandler {
	return &AdminImportHandler{leadsService: leadsService}
}

// ImportCSV handles POST /admin/import-csv requests.
func (h *AdminImportHandler) ImportCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.leadsService.ImportCSV(c.Request().Context(), file)
	if err != nil {
		var validationErr service.ValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to process csv")
	}

	if summary.Created > 0 {
		middleware.RecordLeadMutation("import")
	}

	return Success(c, http.StatusOK, "leads CSV processed", summary)
}
