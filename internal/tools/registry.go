package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/anuraag-b/voice-gateway/internal/audit"
)

// Func is the contract a tool implementation satisfies: it receives the
// validated argument map (empty for no-argument tools) and returns a plain
// result map or an error. Implementations are collaborator wrappers; they
// must never be invoked except through Registry.Execute.
type Func func(ctx context.Context, args map[string]any) (map[string]any, error)

// Result is the normalized outcome of one Execute call.
type Result struct {
	Success        bool           `json:"success"`
	Tool           string         `json:"tool"`
	Result         map[string]any `json:"result,omitempty"`
	Error          string         `json:"error,omitempty"`
	AvailableTools []string       `json:"available_tools,omitempty"`
}

// Registry holds the dispatch table from whitelisted tool names to their
// implementations and is the single chokepoint through which tool calls are
// validated, audited, and executed.
type Registry struct {
	funcs map[ToolName]Func
	trail *audit.Trail
}

// NewRegistry creates an empty registry recording to the given audit trail.
func NewRegistry(trail *audit.Trail) *Registry {
	return &Registry{
		funcs: make(map[ToolName]Func),
		trail: trail,
	}
}

// Register adds a tool implementation to the dispatch table.
func (r *Registry) Register(name ToolName, fn Func) {
	r.funcs[name] = fn
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return len(r.funcs)
}

// CheckConsistency verifies the startup invariant that the catalog and the
// dispatch table describe the same set of tools. Run once at startup; a
// mismatch is a configuration bug, not a runtime condition.
func (r *Registry) CheckConsistency() error {
	var missing, extra []string
	for _, name := range allToolNames {
		if _, ok := r.funcs[name]; !ok {
			missing = append(missing, string(name))
		}
	}
	for name := range r.funcs {
		if _, ok := ParseToolName(string(name)); !ok {
			extra = append(extra, string(name))
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return fmt.Errorf("catalog/dispatch mismatch: missing implementations [%s], unknown registrations [%s]",
			strings.Join(missing, ", "), strings.Join(extra, ", "))
	}
	return nil
}

// Execute validates a tool call, records it, dispatches it, and normalizes
// the outcome. It performs exactly one execution attempt, never retries, and
// never lets an implementation fault escape as a panic.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) Result {
	if args == nil {
		args = map[string]any{}
	}
	start := time.Now()

	outcome := Validate(name, args)
	if !outcome.OK {
		r.trail.SecurityEvent("tool_rejected", "Tool call rejected: "+outcome.Reason, audit.SeverityWarning)
		r.trail.RecordRejection(name, outcome.Reason, args)
		return Result{Tool: name, Error: outcome.Reason}
	}

	r.trail.RecordCall(name, args)

	tool, _ := ParseToolName(name)
	fn, ok := r.funcs[tool]
	if !ok {
		// Validation passed but no implementation is registered. The startup
		// consistency check makes this unreachable; still, fail closed.
		return Result{
			Tool:           name,
			Error:          fmt.Sprintf("Unknown tool: %s", name),
			AvailableTools: r.Names(),
		}
	}

	callArgs := args
	if !tool.TakesArguments() {
		callArgs = map[string]any{}
	}

	result, err := invoke(ctx, fn, callArgs)
	elapsed := time.Since(start)

	if err != nil {
		r.trail.SecurityEvent("tool_execution_error",
			fmt.Sprintf("Tool '%s' failed: %v", name, err), audit.SeverityError)
		r.trail.RecordResult(name, false, "", err.Error(), elapsed)
		return Result{Tool: name, Error: fmt.Sprintf("Tool execution failed: %v", err)}
	}

	r.trail.RecordResult(name, true, audit.TypeOf(result), "", elapsed)
	return Result{Success: true, Tool: name, Result: result}
}

// invoke shields the registry from panicking implementations; a panic is an
// execution failure like any other.
func invoke(ctx context.Context, fn Func, args map[string]any) (result map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("panic in tool implementation: %v", rec)
		}
	}()
	return fn(ctx, args)
}
