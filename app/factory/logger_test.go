package factory

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func TestNewModuleLogger(t *testing.T) {
	logger := NewModuleLogger("payments-test")
	if logger == nil {
		t.Fatal("expected a logger")
	}
}

func TestLoggerWithContextAddsRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	logger := LoggerWithContext(NewModuleLogger("payments-test"), ctx)
	entry, ok := logger.(*logrus.Entry)
	if !ok {
		t.Fatalf("expected *logrus.Entry, got %T", logger)
	}
	if entry.Data["request_id"] != "req-123" {
		t.Fatalf("expected request_id field, got %+v", entry.Data)
	}
}

func TestLoggerWithContextWithoutRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	base := NewModuleLogger("payments-test")
	logger := LoggerWithContext(base, ctx)
	entry, ok := logger.(*logrus.Entry)
	if !ok {
		t.Fatalf("expected *logrus.Entry, got %T", logger)
	}
	if _, present := entry.Data["request_id"]; present {
		t.Fatal("expected no request_id field")
	}
}
