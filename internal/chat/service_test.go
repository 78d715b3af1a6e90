package chat

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuraag-b/voice-gateway/internal/llm"
	"github.com/anuraag-b/voice-gateway/internal/tools"
)

// fakeClient is a canned model collaborator.
type fakeClient struct {
	result *llm.ChatResult
	err    error

	gotMessages     []llm.Message
	gotDeclarations []tools.Declaration
}

func (f *fakeClient) Chat(_ context.Context, messages []llm.Message, declarations []tools.Declaration) (*llm.ChatResult, error) {
	f.gotMessages = messages
	f.gotDeclarations = declarations
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// recordingExecutor records dispatches and answers with canned results.
type recordingExecutor struct {
	calls []string
}

func (r *recordingExecutor) Execute(_ context.Context, name string, args map[string]any) tools.Result {
	r.calls = append(r.calls, name)
	return tools.Result{Success: true, Tool: name, Result: args}
}

func TestProcessMessagePlainReply(t *testing.T) {
	client := &fakeClient{result: &llm.ChatResult{Content: "The capital of France is Paris."}}
	executor := &recordingExecutor{}
	svc := NewService(client, executor)

	resp := svc.ProcessMessage(context.Background(), "What is the capital of France?", nil)

	require.True(t, resp.Success)
	assert.Equal(t, "The capital of France is Paris.", resp.Response)
	assert.Empty(t, resp.ToolResults)
	assert.Empty(t, executor.calls)

	// The declared tool list mirrors the catalog.
	assert.Len(t, client.gotDeclarations, len(tools.AllToolNames()))
}

func TestProcessMessageAppendsHistory(t *testing.T) {
	client := &fakeClient{result: &llm.ChatResult{Content: "ok"}}
	svc := NewService(client, &recordingExecutor{})

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hello"},
	}
	svc.ProcessMessage(context.Background(), "and now?", history)

	require.Len(t, client.gotMessages, 3)
	assert.Equal(t, llm.RoleUser, client.gotMessages[2].Role)
	assert.Equal(t, "and now?", client.gotMessages[2].Content)
	// The caller's history slice is not mutated.
	assert.Len(t, history, 2)
}

func TestProcessMessageDispatchesToolCallsInOrder(t *testing.T) {
	client := &fakeClient{result: &llm.ChatResult{
		Content: "Let me check that.",
		ToolCalls: []llm.ToolCall{
			{Name: "check_weather", Arguments: map[string]any{"city": "Boston"}},
			{Name: "search_wiki", Arguments: map[string]any{"query": "Boston"}},
		},
	}}
	executor := &recordingExecutor{}
	svc := NewService(client, executor)

	resp := svc.ProcessMessage(context.Background(), "What's the weather in Boston?", nil)

	require.True(t, resp.Success)
	// Each requested call dispatched exactly once, in request order.
	assert.Equal(t, []string{"check_weather", "search_wiki"}, executor.calls)
	require.Len(t, resp.ToolResults, 2)
	assert.Equal(t, "check_weather", resp.ToolResults[0].Tool)
	assert.True(t, resp.ToolResults[0].Success)
	assert.Equal(t, "Boston", resp.ToolResults[0].Result["city"])
	assert.Equal(t, "search_wiki", resp.ToolResults[1].Tool)
}

func TestProcessMessageConnectionFailure(t *testing.T) {
	client := &fakeClient{err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}
	svc := NewService(client, &recordingExecutor{})

	resp := svc.ProcessMessage(context.Background(), "hello", nil)

	require.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Could not connect")
	assert.Empty(t, resp.Response)
	assert.Empty(t, resp.ToolResults)
}

func TestProcessMessageTimeout(t *testing.T) {
	client := &fakeClient{err: context.DeadlineExceeded}
	svc := NewService(client, &recordingExecutor{})

	resp := svc.ProcessMessage(context.Background(), "hello", nil)

	require.False(t, resp.Success)
	assert.Contains(t, resp.Error, "took too long")
}

func TestProcessMessageOtherFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("model server error: out of memory")}
	svc := NewService(client, &recordingExecutor{})

	resp := svc.ProcessMessage(context.Background(), "hello", nil)

	require.False(t, resp.Success)
	assert.Contains(t, resp.Error, "out of memory")
}
