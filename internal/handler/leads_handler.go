package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-tracker/internal/dto"
	"github.com/octobees/lead-tracker/internal/middleware"
	"github.com/octobees/lead-tracker/internal/repository"
	"github.com/octobees/lead-tracker/internal/service"
)

// LeadsHandler exposes the lead CRUD, search, export and aggregate endpoints.
type LeadsHandler struct {
	service *service.LeadsService
}

// NewLeadsHandler creates a new handler instance.
func NewLeadsHandler(service *service.LeadsService) *LeadsHandler {
	return &LeadsHandler{service: service}
}

// List handles GET /api/leads requests with an optional search query.
func (h *LeadsHandler) List(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("search"))

	leads, err := h.service.List(c.Request().Context(), query)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list leads")
	}

	return Success(c, http.StatusOK, "leads retrieved", leads)
}

// Get handles GET /api/leads/:id requests.
func (h *LeadsHandler) Get(c echo.Context) error {
	lead, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to fetch lead")
	}

	return Success(c, http.StatusOK, "lead retrieved", lead)
}

// Create handles POST /api/leads requests.
func (h *LeadsHandler) Create(c echo.Context) error {
	var in dto.LeadInput
	if err := c.Bind(&in); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return h.writeLeadError(c, err, "failed to create lead")
	}

	middleware.RecordLeadMutation("create")
	return SuccessWithWarning(c, http.StatusCreated, "lead created", result.Lead, result.Warning)
}

// Update handles PUT /api/leads/:id requests.
func (h *LeadsHandler) Update(c echo.Context) error {
	var in dto.LeadInput
	if err := c.Bind(&in); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return h.writeLeadError(c, err, "failed to update lead")
	}

	middleware.RecordLeadMutation("update")
	return SuccessWithWarning(c, http.StatusOK, "lead updated", result.Lead, result.Warning)
}

// Delete handles DELETE /api/leads/:id requests.
func (h *LeadsHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to delete lead")
	}

	middleware.RecordLeadMutation("delete")
	return c.NoContent(http.StatusNoContent)
}

// Export handles GET /api/export requests, returning all leads as CSV.
func (h *LeadsHandler) Export(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.Request().Context(), &buf); err != nil {
		return Error(c, http.StatusInternalServerError, "failed to export leads")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=leads_export.csv`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// Stats handles GET /api/stats requests.
func (h *LeadsHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to compute stats")
	}

	return Success(c, http.StatusOK, "stats computed", stats)
}

// Tags handles GET /api/tags requests.
func (h *LeadsHandler) Tags(c echo.Context) error {
	tags, err := h.service.Tags(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list tags")
	}

	return Success(c, http.StatusOK, "tags retrieved", map[string]any{"tags": tags})
}

func (h *LeadsHandler) writeLeadError(c echo.Context, err error, fallback string) error {
	var vErr service.ValidationError
	switch {
	case errors.Is(err, repository.ErrLeadNotFound):
		return Error(c, http.StatusNotFound, "lead not found")
	case errors.As(err, &vErr):
		return Error(c, http.StatusBadRequest, vErr.Error())
	default:
		return Error(c, http.StatusInternalServerError, fallback)
	}
}
