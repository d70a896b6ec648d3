package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-tracker/internal/service"
)

func newAdminImportHandler(repo *capturingLeadsRepo) *AdminImportHandler {
	return NewAdminImportHandler(service.NewLeadsService(repo))
}

func TestAdminImportHandler_MissingFile(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin/import-csv", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := newAdminImportHandler(&capturingLeadsRepo{})
	_ = handler.ImportCSV(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminImportHandler_MissingColumns(t *testing.T) {
	e := echo.New()
	req, rec := multipartRequest(t, "file", "leads.csv", "company_name,email\nAcme,jane@acme.com\n")
	c := e.NewContext(req, rec)

	handler := newAdminImportHandler(&capturingLeadsRepo{})
	_ = handler.ImportCSV(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid csv, got %d", rec.Code)
	}
}

func TestAdminImportHandler_Success(t *testing.T) {
	e := echo.New()
	csv := "company_name,contact_name,title,email,tags\n" +
		"Acme,Jane Doe,CTO,jane@acme.com,vip;warm\n" +
		"Globex,John Roe,CEO,bad-email,\n"
	req, rec := multipartRequest(t, "file", "leads.csv", csv)
	c := e.NewContext(req, rec)

	repo := &capturingLeadsRepo{}
	handler := newAdminImportHandler(repo)
	_ = handler.ImportCSV(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one lead persisted, got %d", len(repo.saved))
	}

	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data, ok := payload.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data shape: %+v", payload.Data)
	}
	if data["created"] != float64(1) || data["skipped"] != float64(1) || data["total"] != float64(2) {
		t.Fatalf("unexpected summary: %+v", data)
	}
}

func multipartRequest(t *testing.T, field, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/import-csv", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}
