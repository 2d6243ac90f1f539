package dto

import (
	"time"

	"condo-assistant-be/pkg/chatstream"

	"github.com/google/uuid"
)

type ChatCompletionMessage struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Messages  []ChatCompletionMessage `json:"messages" validate:"required,min=1"`
	SessionId *uuid.UUID              `json:"sessionId,omitempty"`
}

type CreateSessionRequest struct {
	ApartmentId uuid.UUID `json:"apartment_id" validate:"required"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id          uuid.UUID  `json:"id"`
	ApartmentId uuid.UUID  `json:"apartment_id"`
	Title       string     `json:"title"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID           `json:"id"`
	Role      string              `json:"role"`
	Content   string              `json:"content"`
	Sources   []chatstream.Source `json:"sources,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type DeleteSessionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
}
