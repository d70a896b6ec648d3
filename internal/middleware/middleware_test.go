package middleware

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-tracker/internal/config"
)

func TestLoggingMiddleware(t *testing.T) {
	orig := log.Writer()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(orig)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-123")

	err := Logging()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "request_id=rid-123") {
		t.Fatalf("expected log output to contain request id, got %s", buf.String())
	}

	// ensure errors are propagated and logged
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-456")
	expected := errors.New("boom")
	err = Logging()(func(c echo.Context) error {
		return expected
	})(c)
	if !strings.Contains(buf.String(), "rid-456") {
		t.Fatalf("expected second log entry with new request id")
	}
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequestID()(func(c echo.Context) error {
		if RequestIDFromContext(c) == "" {
			t.Fatalf("expected generated request id")
		}
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id response header")
	}

	// caller-provided ids are preserved
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given-rid")
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)

	err = RequestID()(func(c echo.Context) error {
		if RequestIDFromContext(c) != "given-rid" {
			t.Fatalf("expected provided request id, got %s", RequestIDFromContext(c))
		}
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteRateLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{Requests: 1, Interval: time.Hour}
	mw := WriteRateLimiter(cfg)

	e := echo.New()
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request allowed, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the bucket is drained, got %d", rec.Code)
	}
}

func TestWriteRateLimiter_Disabled(t *testing.T) {
	mw := WriteRateLimiter(config.RateLimitConfig{})
	e := echo.New()

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected limiter disabled, got %d", rec.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	tests := map[string]struct {
		role       any
		expectCode int
	}{
		"missing role":   {role: nil, expectCode: http.StatusForbidden},
		"wrong role":     {role: "viewer", expectCode: http.StatusForbidden},
		"matching role":  {role: "admin", expectCode: http.StatusOK},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.role != nil {
				c.Set(ContextKeyUserRole, tt.role)
			}

			err := RequireRole("admin")(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected status %d, got %d", tt.expectCode, rec.Code)
			}
		})
	}
}

func TestMetricsMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Metrics()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// errors bubble up unchanged
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	boom := echo.NewHTTPError(http.StatusBadRequest, "bad")
	err = Metrics()(func(c echo.Context) error {
		return boom
	})(c)
	if !errors.Is(err, boom) {
		t.Fatalf("expected error to bubble up, got %v", err)
	}
}
