package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anuraag-b/voice-gateway/internal/tools"
)

// --- API Data Structures ---

type chatRequest struct {
	Model    string              `json:"model"`
	Messages []Message           `json:"messages"`
	Tools    []tools.Declaration `json:"tools,omitempty"`
	Stream   bool                `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Role      string     `json:"role"`
		Content   string     `json:"content"`
		ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	} `json:"message"`
	Error string `json:"error,omitempty"`
}

// --- Main Client ---

// OllamaClient talks to a locally hosted model server exposing the Ollama
// chat endpoint. It holds a dedicated http.Client with a timeout so a hung
// model server cannot hang the gateway.
type OllamaClient struct {
	url        string
	model      string
	httpClient *http.Client
}

var _ Client = (*OllamaClient)(nil)

// NewOllamaClient creates a client for the given chat endpoint and model.
func NewOllamaClient(url, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		url:   url,
		model: model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Chat sends the full conversation plus the declared tool list and returns
// the model's reply, including any requested tool calls in request order.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message, declarations []tools.Declaration) (*ChatResult, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    declarations,
		Stream:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model server request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read model response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("model server error: %s", parsed.Error)
	}

	return &ChatResult{
		Content:   parsed.Message.Content,
		ToolCalls: parsed.Message.ToolCalls,
	}, nil
}
