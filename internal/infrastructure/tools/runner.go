package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/Nyukimin/schooloo/internal/domain/tool"
	"github.com/Nyukimin/schooloo/internal/infrastructure/backend"
	"github.com/Nyukimin/schooloo/pkg/logger"
)

// Observer receives one call per tool execution
type Observer interface {
	ObserveTool(name string, success bool, elapsed time.Duration)
}

// ToolRunner executes registered tools and normalizes every outcome into a tool.Result
type ToolRunner struct {
	registry *tool.Registry
	observer Observer
}

// NewToolRunner creates a ToolRunner over registry
func NewToolRunner(registry *tool.Registry) *ToolRunner {
	return &ToolRunner{
		registry: registry,
	}
}

// WithObserver sets the execution observer
func (r *ToolRunner) WithObserver(o Observer) *ToolRunner {
	r.observer = o
	return r
}

// Execute runs a tool. It never panics and never returns an error:
// every failure is reported as Success=false with a readable message.
func (r *ToolRunner) Execute(ctx context.Context, toolName string, args map[string]interface{}) (res tool.Result) {
	desc, exists := r.registry.Lookup(toolName)
	if !exists {
		return tool.Fail("unknown tool: %s", toolName)
	}

	bag := tool.Args(args)
	if bag == nil {
		bag = tool.Args{}
	}
	if missing, ok := desc.MissingParam(bag); ok {
		return tool.Fail("missing required parameter: %s", missing)
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = tool.Fail("tool %s failed: %v", toolName, p)
		}
		elapsed := time.Since(start)
		if r.observer != nil {
			r.observer.ObserveTool(toolName, res.Success, elapsed)
		}
		fields := map[string]interface{}{
			"tool":       toolName,
			"success":    res.Success,
			"elapsed_ms": elapsed.Milliseconds(),
		}
		if res.Success {
			logger.DebugCF("tools", "tool executed", fields)
		} else {
			fields["error"] = res.Error
			logger.WarnCF("tools", "tool failed", fields)
		}
	}()

	payload, err := desc.Invoke(ctx, bag)
	if err != nil {
		return tool.Fail("%v", err)
	}
	return normalize(toolName, payload)
}

// List returns the registered tool names in registration order
func (r *ToolRunner) List() []string {
	return r.registry.Names()
}

// Registry returns the underlying registry
func (r *ToolRunner) Registry() *tool.Registry {
	return r.registry
}

// normalize turns a backend body into a Result. success=false bodies become failures that keep the body.
func normalize(toolName string, payload interface{}) tool.Result {
	resp, ok := payload.(backend.Response)
	if !ok {
		return tool.Ok(payload)
	}

	data := map[string]interface{}(resp)
	if resp.Success() {
		return tool.Ok(data)
	}

	msg := resp.Error()
	if msg == "" {
		msg = fmt.Sprintf("%s: backend reported failure", toolName)
	}
	return tool.Result{Success: false, Data: data, Error: msg}
}
