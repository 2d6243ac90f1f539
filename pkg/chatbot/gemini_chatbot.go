package chatbot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type GeminiChatParts struct {
	Text string `json:"text"`
}

type GeminiChatContent struct {
	Parts []*GeminiChatParts `json:"parts"`
	Role  string             `json:"role,omitempty"`
}

type GeminiGenerationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type GeminiChatRequest struct {
	Contents          []*GeminiChatContent    `json:"contents"`
	SystemInstruction *GeminiChatContent      `json:"systemInstruction,omitempty"`
	GenerationConfig  *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

type ChatHistory struct {
	Chat string
	Role string
}

type GeminiChatCandidate struct {
	Content *GeminiChatContent `json:"content"`
}

type GeminiChatResponse struct {
	Candidates []*GeminiChatCandidate `json:"candidates"`
}

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "model"

	defaultBaseURL = "https://generativelanguage.googleapis.com"
)

// chatResponseSchema constrains structured-mode output to one object
// with the answer text and the citation list.
var chatResponseSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "answer": {"type": "STRING"},
    "sources": {
      "type": "ARRAY",
      "items": {
        "type": "OBJECT",
        "properties": {
          "fileId": {"type": "STRING"},
          "page": {"type": "STRING"},
          "blockId": {"type": "STRING"},
          "citation": {"type": "STRING"},
          "title": {"type": "STRING"}
        },
        "required": ["fileId"]
      }
    }
  },
  "required": ["answer", "sources"]
}`)

// GeminiClient drives generateContent calls against the Gemini REST
// API, streaming and non-streaming.
type GeminiClient struct {
	ApiKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		ApiKey:  apiKey,
		Model:   model,
		BaseURL: defaultBaseURL,
		Client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *GeminiClient) buildRequest(systemPrompt string, chatHistories []*ChatHistory, structured bool) *GeminiChatRequest {
	chatContents := make([]*GeminiChatContent, 0, len(chatHistories))
	for _, chatHistory := range chatHistories {
		if strings.TrimSpace(chatHistory.Chat) == "" {
			// Gemini rejects empty content parts
			continue
		}
		chatContents = append(chatContents, &GeminiChatContent{
			Parts: []*GeminiChatParts{{Text: chatHistory.Chat}},
			Role:  chatHistory.Role,
		})
	}

	payload := &GeminiChatRequest{
		Contents: chatContents,
	}
	if systemPrompt != "" {
		payload.SystemInstruction = &GeminiChatContent{
			Parts: []*GeminiChatParts{{Text: systemPrompt}},
		}
	}
	if structured {
		payload.GenerationConfig = &GeminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   chatResponseSchema,
		}
	}
	return payload
}

// StreamGenerate runs one generation call and invokes onDelta for every
// text fragment as it arrives. In structured mode the fragments are
// pieces of one JSON object; in free-text mode they are answer prose.
// A non-nil error from onDelta aborts the stream.
func (c *GeminiClient) StreamGenerate(
	ctx context.Context,
	systemPrompt string,
	chatHistories []*ChatHistory,
	structured bool,
	onDelta func(text string) error,
) error {
	payload := c.buildRequest(systemPrompt, chatHistories, structured)
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf(
		"%s/v1beta/models/%s:streamGenerateContent?alt=sse",
		c.BaseURL,
		c.Model,
	)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payloadJson))
	if err != nil {
		return err
	}
	req.Header.Set("x-goog-api-key", c.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		resBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk GeminiChatResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// skip malformed keep-alive chunks
			continue
		}
		for _, candidate := range chunk.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part == nil || part.Text == "" {
					continue
				}
				if err := onDelta(part.Text); err != nil {
					return err
				}
			}
		}
	}

	return scanner.Err()
}
