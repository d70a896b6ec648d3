package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/lead-tracker/internal/auth"
	"github.com/octobees/lead-tracker/internal/service"
)

func newAuthHandler(t *testing.T, adminEmail, adminPassword string) *AuthHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthHandler(service.NewAuthService(adminEmail, string(hash), jwtManager))
}

func loginRequest(body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestAuthHandler_Login_Success(t *testing.T) {
	handler := newAuthHandler(t, "admin@example.com", "s3cret")

	e := echo.New()
	req, rec := loginRequest(`{"email":"admin@example.com","password":"s3cret"}`)
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data, ok := payload.Data.(map[string]any)
	if !ok || data["access_token"] == "" {
		t.Fatalf("expected access token in response, got %+v", payload.Data)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler := newAuthHandler(t, "admin@example.com", "s3cret")

	e := echo.New()
	req, rec := loginRequest(`{"email":"admin@example.com","password":"wrong"}`)
	c := e.NewContext(req, rec)

	_ = handler.Login(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	handler := newAuthHandler(t, "admin@example.com", "s3cret")

	e := echo.New()
	req, rec := loginRequest(`{"email":"  ","password":""}`)
	c := e.NewContext(req, rec)

	_ = handler.Login(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
