package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nyukimin/schooloo/internal/domain/llm"
	"github.com/Nyukimin/schooloo/internal/domain/query"
	"github.com/Nyukimin/schooloo/internal/domain/routing"
	"github.com/Nyukimin/schooloo/internal/domain/session"
	"github.com/Nyukimin/schooloo/internal/domain/tool"
	"github.com/Nyukimin/schooloo/pkg/logger"
)

// Classifier maps text and role to candidate tool names
type Classifier interface {
	Classify(text string, role routing.Role) ([]string, error)
}

// ToolExecutor runs a tool and never fails
type ToolExecutor interface {
	Execute(ctx context.Context, toolName string, args map[string]interface{}) tool.Result
}

// ResponseFormatter renders a tool result for a role
type ResponseFormatter interface {
	Format(role routing.Role, toolName string, result tool.Result) string
}

// ArgExtractor pulls tool arguments out of free text
type ArgExtractor func(text string) map[string]interface{}

// Observer receives dispatch and chat outcomes
type Observer interface {
	ObserveDispatch(role, toolName string, success bool, elapsed time.Duration)
	ObserveChat(provider string, success bool, elapsed time.Duration)
}

// Options tunes the orchestrator
type Options struct {
	MaxTools     int     // distinct candidates invoked per dispatch
	HistoryTurns int     // session turns sent to the model
	Temperature  float64 // chat sampling temperature
	TopP         float64
	MaxTokens    int
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		MaxTools:     1,
		HistoryTurns: 10,
		Temperature:  0.7,
		TopP:         0.95,
		MaxTokens:    2048,
	}
}

// DispatchRequest is one query to route to a tool
type DispatchRequest struct {
	SessionID string
	Channel   string
	Text      string
	Role      string
	Args      map[string]interface{}
}

// DispatchResponse is the outcome of a dispatch
type DispatchResponse struct {
	JobID       string       `json:"job_id"`
	Role        routing.Role `json:"role"`
	Query       string       `json:"query"`
	ToolsUsed   []string     `json:"tools_used"`
	InvokedTool string       `json:"invoked_tool,omitempty"`
	Response    string       `json:"response"`
	Success     bool         `json:"success"`
	Error       string       `json:"error,omitempty"`
}

// DispatchOrchestrator composes classification, tool execution and formatting
type DispatchOrchestrator struct {
	classifier  Classifier
	tools       ToolExecutor
	formatter   ResponseFormatter
	extract     ArgExtractor
	sessionRepo session.SessionRepository
	provider    llm.LLMProvider
	observer    Observer
	opts        Options
}

// NewDispatchOrchestrator creates a DispatchOrchestrator.
// sessionRepo and provider may be nil.
func NewDispatchOrchestrator(
	classifier Classifier,
	tools ToolExecutor,
	formatter ResponseFormatter,
	sessionRepo session.SessionRepository,
	provider llm.LLMProvider,
	opts Options,
) *DispatchOrchestrator {
	defaults := DefaultOptions()
	if opts.MaxTools <= 0 {
		opts.MaxTools = defaults.MaxTools
	}
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = defaults.HistoryTurns
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaults.MaxTokens
	}
	return &DispatchOrchestrator{
		classifier:  classifier,
		tools:       tools,
		formatter:   formatter,
		sessionRepo: sessionRepo,
		provider:    provider,
		opts:        opts,
	}
}

// WithArgExtractor sets the free-text argument extractor
func (o *DispatchOrchestrator) WithArgExtractor(fn ArgExtractor) *DispatchOrchestrator {
	o.extract = fn
	return o
}

// WithObserver sets the metrics observer
func (o *DispatchOrchestrator) WithObserver(obs Observer) *DispatchOrchestrator {
	o.observer = obs
	return o
}

// Provider returns the configured model provider, or nil
func (o *DispatchOrchestrator) Provider() llm.LLMProvider {
	return o.provider
}

// Classify exposes the classifier with role normalization
func (o *DispatchOrchestrator) Classify(text, role string) (routing.Classification, error) {
	r := routing.ParseRole(role)
	tools, err := o.classifier.Classify(text, r)
	if err != nil {
		return routing.Classification{}, err
	}
	return routing.NewClassification(r, text, tools), nil
}

// Format exposes the formatter with role normalization
func (o *DispatchOrchestrator) Format(role, toolName string, result tool.Result) string {
	return o.formatter.Format(routing.ParseRole(role), toolName, result)
}

// Dispatch classifies the text, invokes the candidate tools and renders the chosen result.
// It never returns an error: every failure ends in a displayable Response.
func (o *DispatchOrchestrator) Dispatch(ctx context.Context, req DispatchRequest) (resp DispatchResponse) {
	start := time.Now()
	jobID := query.NewJobID()
	role := routing.ParseRole(req.Role)
	q := query.NewQuery(jobID, req.Text, role, req.SessionID).WithArgs(req.Args)

	resp = DispatchResponse{
		JobID:     jobID.String(),
		Role:      role,
		Query:     req.Text,
		ToolsUsed: []string{},
	}

	defer func() {
		if p := recover(); p != nil {
			logger.ErrorCF("orchestrator", "dispatch panicked", map[string]interface{}{
				"job_id": resp.JobID,
				"panic":  fmt.Sprintf("%v", p),
			})
			resp.Response = "Error: internal failure"
			resp.Success = false
			resp.Error = fmt.Sprintf("%v", p)
		}
		if o.observer != nil {
			o.observer.ObserveDispatch(role.String(), resp.InvokedTool, resp.Success, time.Since(start))
		}
	}()

	// 1. Reject empty text before classification
	if q.IsEmpty() {
		resp.Response = "Error: " + routing.ErrEmptyQuery.Error()
		resp.Error = routing.ErrEmptyQuery.Error()
		return resp
	}

	// 2. Classify
	candidates, err := o.classifier.Classify(q.Text(), role)
	if err != nil {
		resp.Response = "Error: " + err.Error()
		resp.Error = err.Error()
		return resp
	}
	resp.ToolsUsed = candidates

	// 3. Invoke
	args := o.mergeArgs(q)
	name, result := o.invoke(ctx, candidates, args)

	// 4. Render
	resp.InvokedTool = name
	resp.Success = result.Success
	resp.Error = result.Error
	resp.Response = o.formatter.Format(role, name, result)

	logger.InfoCF("orchestrator", "dispatch complete", map[string]interface{}{
		"job_id":     resp.JobID,
		"role":       role.String(),
		"candidates": candidates,
		"tool":       name,
		"success":    result.Success,
	})

	// 5. Record
	o.record(ctx, req.SessionID, req.Channel, role, session.Turn{
		JobID: resp.JobID,
		Kind:  session.TurnDispatch,
		Query: req.Text,
		Tools: candidates,
		Reply: resp.Response,
	})

	return resp
}

// invoke runs up to MaxTools distinct candidates in order and picks the first success,
// or the first result when none succeeded
func (o *DispatchOrchestrator) invoke(ctx context.Context, candidates []string, args map[string]interface{}) (string, tool.Result) {
	var (
		firstName   string
		firstResult tool.Result
		invoked     int
	)
	seen := make(map[string]bool, len(candidates))

	for _, name := range candidates {
		if seen[name] {
			continue
		}
		if invoked == o.opts.MaxTools {
			break
		}
		seen[name] = true
		invoked++

		result := o.tools.Execute(ctx, name, args)
		if result.Success {
			return name, result
		}
		if invoked == 1 {
			firstName, firstResult = name, result
		}
	}
	return firstName, firstResult
}

// mergeArgs layers extracted arguments, role defaults and caller arguments, the last winning
func (o *DispatchOrchestrator) mergeArgs(q query.Query) map[string]interface{} {
	args := make(map[string]interface{})
	if o.extract != nil {
		for k, v := range o.extract(q.Text()) {
			args[k] = v
		}
	}
	for k, v := range roleDefaults(q.Role(), q.Text()) {
		if _, ok := args[k]; !ok {
			args[k] = v
		}
	}
	for k, v := range q.Args() {
		args[k] = v
	}
	return args
}

// roleDefaults fills arguments a role implies
func roleDefaults(role routing.Role, text string) map[string]interface{} {
	defaults := map[string]interface{}{
		"query_type": role.String(),
		"query_text": text,
	}
	if role == routing.RoleParent || role == routing.RoleStudent {
		defaults["category"] = role.String()
	}
	return defaults
}

// record appends a turn to the session. Storage errors are logged and dropped.
func (o *DispatchOrchestrator) record(ctx context.Context, sessionID, channel string, role routing.Role, turn session.Turn) {
	if sessionID == "" || o.sessionRepo == nil {
		return
	}

	sess, err := o.loadOrCreateSession(ctx, sessionID, channel, role)
	if err != nil {
		logger.WarnCF("orchestrator", "session load failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	sess.AddTurn(turn)
	if err := o.sessionRepo.Save(ctx, sess); err != nil {
		logger.WarnCF("orchestrator", "session save failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
}

// loadOrCreateSession loads a session or starts a new one
func (o *DispatchOrchestrator) loadOrCreateSession(ctx context.Context, id, channel string, role routing.Role) (*session.Session, error) {
	sess, err := o.sessionRepo.Load(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			if channel == "" {
				channel = "api"
			}
			return session.NewSession(id, channel, role), nil
		}
		return nil, err
	}
	return sess, nil
}
