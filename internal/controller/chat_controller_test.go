package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"condo-assistant-be/internal/dto"
	"condo-assistant-be/internal/service"
	"condo-assistant-be/pkg/chatstream"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type stubChatService struct {
	prepareErr error
	fragments  []string
}

func (s *stubChatService) CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	return nil, nil
}

func (s *stubChatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	return nil, nil
}

func (s *stubChatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	return nil, nil
}

func (s *stubChatService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	return nil
}

func (s *stubChatService) PrepareCompletion(ctx context.Context, userId uuid.UUID, request *dto.ChatCompletionRequest) (*service.CompletionTurn, error) {
	if s.prepareErr != nil {
		return nil, s.prepareErr
	}
	return &service.CompletionTurn{}, nil
}

func (s *stubChatService) StreamCompletion(ctx context.Context, turn *service.CompletionTurn, out *chatstream.StreamWriter) (*service.CompletionResult, error) {
	for _, f := range s.fragments {
		if err := out.WriteFragment(f); err != nil {
			return nil, err
		}
	}
	if err := out.WriteFinish("stop"); err != nil {
		return nil, err
	}
	return &service.CompletionResult{}, nil
}

func (s *stubChatService) GenerationMode() chatstream.GenerationMode {
	return chatstream.ModeStructured
}

func completionApp(svc service.IChatService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uuid.New().String())
		return c.Next()
	})
	ctrl := NewChatController(svc)
	app.Post("/completion", ctrl.Completion)
	return app
}

// A turn that fails before generation must come back as a plain HTTP
// error, not an empty 200 with a half-started stream.
func TestCompletionPreparationFailureReturns500(t *testing.T) {
	app := completionApp(&stubChatService{prepareErr: errors.New("session not found or access denied")})

	body, _ := json.Marshal(dto.ChatCompletionRequest{
		Messages: []dto.ChatCompletionMessage{{Role: "user", Content: "hello"}},
	})
	req := httptest.NewRequest("POST", "/completion", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusInternalServerError)
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Error.Message != "session not found or access denied" {
		t.Errorf("error message = %q", payload.Error.Message)
	}
}

func TestCompletionStreamsRecords(t *testing.T) {
	app := completionApp(&stubChatService{fragments: []string{`{"answer":"ゴミ`, `出しは火曜日です"}`}})

	body, _ := json.Marshal(dto.ChatCompletionRequest{
		Messages: []dto.ChatCompletionMessage{{Role: "user", Content: "ゴミ出しの日は？"}},
	})
	req := httptest.NewRequest("POST", "/completion", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Chat-API-Status"); got != string(chatstream.ModeStructured) {
		t.Errorf("X-Chat-API-Status = %q, want %q", got, chatstream.ModeStructured)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 records, got %d: %q", len(lines), string(raw))
	}
	for _, line := range lines[:2] {
		if !strings.HasPrefix(line, chatstream.RecordFragment+":") {
			t.Errorf("fragment record malformed: %q", line)
		}
	}
	if !strings.HasPrefix(lines[2], chatstream.RecordFinish+":") {
		t.Errorf("finish record malformed: %q", lines[2])
	}
}
