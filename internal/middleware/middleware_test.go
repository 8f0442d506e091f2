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

	authpkg "github.com/octobees/contact-engine/internal/auth"
	"github.com/octobees/contact-engine/internal/config"
)

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()

	t.Run("generates id when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequestID()(func(c echo.Context) error {
			if RequestIDFromContext(c) == "" {
				t.Fatalf("expected request id in context")
			}
			return c.NoContent(http.StatusOK)
		})(c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("expected request id header")
		}
	})

	t.Run("keeps caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "caller-id")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = RequestID()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
		if rec.Header().Get("X-Request-ID") != "caller-id" {
			t.Fatalf("caller-provided id must be preserved")
		}
	})
}

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
	if !strings.Contains(buf.String(), "request_id=rid-123") {
		t.Fatalf("expected log output to contain request id, got %s", buf.String())
	}

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

func TestValidateRateLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{Requests: 1, Interval: time.Hour}
	e := echo.New()
	e.POST("/validate", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, ValidateRateLimiter(cfg))

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/validate", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/validate", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", second.Code)
	}
}

func TestJWTMiddleware(t *testing.T) {
	manager := authpkg.NewJWTManager("secret", time.Hour)
	e := echo.New()
	e.POST("/validate", func(c echo.Context) error {
		if c.Get(ContextKeyClientID) != "client-1" {
			t.Fatalf("expected client id in context")
		}
		return c.NoContent(http.StatusOK)
	}, JWT(manager))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/validate", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/validate", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := manager.GenerateToken("client-1", "pipeline@octobees.dev", "service")
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req := httptest.NewRequest(http.MethodPost, "/validate", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}
