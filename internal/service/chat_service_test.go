package service

import (
	"strings"
	"testing"

	"condo-assistant-be/internal/constant"
	"condo-assistant-be/internal/dto"
)

func TestLastUserContent(t *testing.T) {
	tests := []struct {
		name     string
		messages []dto.ChatCompletionMessage
		want     string
	}{
		{
			name:     "empty history",
			messages: nil,
			want:     "",
		},
		{
			name: "single user message",
			messages: []dto.ChatCompletionMessage{
				{Role: "user", Content: "ゴミ出しの日はいつですか"},
			},
			want: "ゴミ出しの日はいつですか",
		},
		{
			name: "picks the latest user turn",
			messages: []dto.ChatCompletionMessage{
				{Role: "user", Content: "first question"},
				{Role: "assistant", Content: "first answer"},
				{Role: "user", Content: "second question"},
			},
			want: "second question",
		},
		{
			name: "skips trailing assistant message",
			messages: []dto.ChatCompletionMessage{
				{Role: "user", Content: "only question"},
				{Role: "assistant", Content: "partial answer"},
			},
			want: "only question",
		},
		{
			name: "no user turns at all",
			messages: []dto.ChatCompletionMessage{
				{Role: "system", Content: "instructions"},
				{Role: "assistant", Content: "greeting"},
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lastUserContent(tt.messages)
			if got != tt.want {
				t.Errorf("lastUserContent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToChatHistories(t *testing.T) {
	messages := []dto.ChatCompletionMessage{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "answer"},
		{Role: "system", Content: "note"},
		{Role: "model", Content: "already mapped"},
	}

	histories := toChatHistories(messages)
	if len(histories) != len(messages) {
		t.Fatalf("expected %d histories, got %d", len(messages), len(histories))
	}

	wantRoles := []string{
		constant.ChatMessageRoleUser,
		constant.ChatMessageRoleModel,
		constant.ChatMessageRoleModel,
		constant.ChatMessageRoleModel,
	}
	for i, h := range histories {
		if h.Role != wantRoles[i] {
			t.Errorf("history %d: role = %q, want %q", i, h.Role, wantRoles[i])
		}
		if h.Chat != messages[i].Content {
			t.Errorf("history %d: content = %q, want %q", i, h.Chat, messages[i].Content)
		}
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "short title untouched",
			input: "管理費について",
			want:  "管理費について",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "long ascii title cut at the cap",
			input: strings.Repeat("a", sessionTitleMaxLen+10),
			want:  strings.Repeat("a", sessionTitleMaxLen),
		},
		{
			name:  "multibyte runes are not split",
			input: strings.Repeat("あ", sessionTitleMaxLen+3),
			want:  strings.Repeat("あ", sessionTitleMaxLen),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateTitle(tt.input)
			if got != tt.want {
				t.Errorf("truncateTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
