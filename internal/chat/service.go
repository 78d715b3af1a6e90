// Package chat implements the conversation orchestrator: it forwards a user
// message and history to the model collaborator, routes any tool calls the
// model requests through the execution gateway, and assembles the final
// reply.
package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/anuraag-b/voice-gateway/internal/llm"
	"github.com/anuraag-b/voice-gateway/internal/tools"
)

// ToolExecutor is the gateway surface the orchestrator dispatches through.
// *tools.Registry satisfies it; tests substitute a recorder.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) tools.Result
}

// Response is the standardized result of processing one user message.
type Response struct {
	Success     bool           `json:"success"`
	Response    string         `json:"response,omitempty"`
	ToolResults []tools.Result `json:"tool_results,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Service orchestrates one conversation turn at a time. It is stateless
// across requests; history travels with each call.
type Service struct {
	client       llm.Client
	executor     ToolExecutor
	declarations []tools.Declaration
}

// NewService wires the orchestrator to its model client and tool gateway.
// The tool declarations given to the model are generated from the catalog,
// so the model cannot be led to request an undeclared tool.
func NewService(client llm.Client, executor ToolExecutor) *Service {
	return &Service{
		client:       client,
		executor:     executor,
		declarations: tools.Declarations(),
	}
}

// ProcessMessage appends the user message to history, consults the model,
// executes any requested tool calls sequentially in request order (each at
// most once), and composes the final response. Transport failures are
// classified into distinct, human-actionable messages; no error escapes as a
// fault.
func (s *Service) ProcessMessage(ctx context.Context, message string, history []llm.Message) Response {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	result, err := s.client.Chat(ctx, messages, s.declarations)
	if err != nil {
		return Response{Error: transportError(err)}
	}

	var toolResults []tools.Result
	for _, call := range result.ToolCalls {
		log.Printf("Dispatching tool call: %s", call.Name)
		toolResults = append(toolResults, s.executor.Execute(ctx, call.Name, call.Arguments))
	}

	return Response{
		Success:     true,
		Response:    result.Content,
		ToolResults: toolResults,
	}
}

// transportError maps a model-call failure onto a user-facing message. The
// caller is often a voice client, so the message says whether retrying makes
// sense.
func transportError(err error) string {
	switch llm.Classify(err) {
	case llm.ErrKindConnection:
		return "Could not connect to the language model server. Check that it is running and reachable."
	case llm.ErrKindTimeout:
		return "The language model took too long to respond. Please try again."
	default:
		return fmt.Sprintf("Language model request failed: %v", err)
	}
}
