package serverutils

import (
	"errors"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type validatedRequest struct {
	ApartmentId uuid.UUID `validate:"required"`
	Title       string    `validate:"required,max=100"`
}

func TestValidateRequestPasses(t *testing.T) {
	req := validatedRequest{ApartmentId: uuid.New(), Title: "Bylaws question"}
	if err := ValidateRequest(req); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidateRequestReportsFields(t *testing.T) {
	req := validatedRequest{Title: ""}
	err := ValidateRequest(req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var fiberErr *fiber.Error
	if !errors.As(err, &fiberErr) {
		t.Fatalf("expected fiber.Error, got %T", err)
	}
	if fiberErr.Code != fiber.StatusBadRequest {
		t.Errorf("code = %d, want %d", fiberErr.Code, fiber.StatusBadRequest)
	}
	for _, field := range []string{"ApartmentId", "Title"} {
		if !strings.Contains(fiberErr.Message, field) {
			t.Errorf("message %q missing field %s", fiberErr.Message, field)
		}
	}
}
