package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type recordingLogger struct {
	errorCalls int
	lastMsg    string
}

func (r *recordingLogger) Debug(module, message string, details map[string]interface{}) {}
func (r *recordingLogger) Info(module, message string, details map[string]interface{})  {}
func (r *recordingLogger) Warn(module, message string, details map[string]interface{})  {}
func (r *recordingLogger) Error(module, message string, details map[string]interface{}) {
	r.errorCalls++
	r.lastMsg = message
}
func (r *recordingLogger) Sync() error { return nil }

func TestErrorHandlerKeepsFiberStatusCode(t *testing.T) {
	log := &recordingLogger{}
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(log))
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	res, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
	if log.errorCalls != 0 {
		t.Fatalf("fiber errors should not be logged as unhandled, got %d calls", log.errorCalls)
	}
}

func TestErrorHandlerLogsUnhandledErrors(t *testing.T) {
	log := &recordingLogger{}
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(log))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("connection refused")
	})

	res, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.StatusCode)
	}

	var body ApiResponse[any]
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", body.Message)
	}
	if log.errorCalls != 1 {
		t.Errorf("expected 1 logged error, got %d", log.errorCalls)
	}
}
