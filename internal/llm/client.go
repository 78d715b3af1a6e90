// Package llm contains the client for the local language model collaborator.
// The model is reached over a narrow HTTP chat interface; this package owns
// the wire format and the classification of transport failures, nothing else.
package llm

import (
	"context"

	"github.com/anuraag-b/voice-gateway/internal/tools"
)

// Role identifies the originator of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single entry in a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToolCall is a tool invocation requested by the model. Arguments arrive as
// a JSON object and are handed to the gateway unvalidated; nothing here may
// be trusted until tools.Validate has accepted it.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ChatResult is the model's reply to one chat exchange.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is the interface the orchestrator depends on. Implementations make
// one blocking request per call; retry policy belongs to the caller.
type Client interface {
	Chat(ctx context.Context, messages []Message, declarations []tools.Declaration) (*ChatResult, error)
}
