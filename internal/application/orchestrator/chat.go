package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nyukimin/schooloo/internal/domain/llm"
	"github.com/Nyukimin/schooloo/internal/domain/query"
	"github.com/Nyukimin/schooloo/internal/domain/routing"
	"github.com/Nyukimin/schooloo/internal/domain/session"
	"github.com/Nyukimin/schooloo/pkg/logger"
)

var (
	// ErrEmptyMessage is returned for a blank chat message
	ErrEmptyMessage = errors.New("empty message")
	// ErrNoProvider is returned when chat is used without a model
	ErrNoProvider = errors.New("no language model configured")
)

// ChatRequest is one open-ended message for the model
type ChatRequest struct {
	SessionID string
	Channel   string
	Message   string
	Role      string
	Ground    bool // dispatch first and hand the tool output to the model
}

// ChatResponse is the model reply
type ChatResponse struct {
	JobID      string       `json:"job_id"`
	Role       routing.Role `json:"role"`
	Message    string       `json:"message"`
	Model      string       `json:"model"`
	ToolsUsed  []string     `json:"tools_used,omitempty"`
	TokensUsed int          `json:"tokens_used"`
}

// Chat sends the message to the model with the role prompt and recent session history
func (o *DispatchOrchestrator) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	start := time.Now()
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return ChatResponse{}, ErrEmptyMessage
	}
	if o.provider == nil {
		return ChatResponse{}, ErrNoProvider
	}

	role := routing.ParseRole(req.Role)
	jobID := query.NewJobID()
	prompt := systemPrompt(role)

	// 1. Optional grounding with tool output
	var tools []string
	if req.Ground {
		grounding := o.Dispatch(ctx, DispatchRequest{Text: text, Role: role.String()})
		tools = grounding.ToolsUsed
		if grounding.Success {
			prompt += fmt.Sprintf("\n\nTool output (%s):\n%s", grounding.InvokedTool, grounding.Response)
		}
	}

	// 2. History
	messages := o.history(ctx, req.SessionID)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: text})

	// 3. Generate
	resp, err := o.provider.Generate(ctx, llm.GenerateRequest{
		Messages:     messages,
		MaxTokens:    o.opts.MaxTokens,
		Temperature:  o.opts.Temperature,
		TopP:         o.opts.TopP,
		SystemPrompt: prompt,
	})
	if o.observer != nil {
		o.observer.ObserveChat(o.provider.Name(), err == nil, time.Since(start))
	}
	if err != nil {
		logger.ErrorCF("orchestrator", "chat generation failed", map[string]interface{}{
			"job_id":   jobID.String(),
			"provider": o.provider.Name(),
			"error":    err.Error(),
		})
		return ChatResponse{}, fmt.Errorf("chat generation failed: %w", err)
	}

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return ChatResponse{}, llm.ErrEmptyResponse
	}

	// 4. Record
	o.record(ctx, req.SessionID, req.Channel, role, session.Turn{
		JobID: jobID.String(),
		Kind:  session.TurnChat,
		Query: text,
		Tools: tools,
		Reply: reply,
	})

	return ChatResponse{
		JobID:      jobID.String(),
		Role:       role,
		Message:    reply,
		Model:      o.provider.Name(),
		ToolsUsed:  tools,
		TokensUsed: resp.TokensUsed,
	}, nil
}

// history converts recent session turns into model messages
func (o *DispatchOrchestrator) history(ctx context.Context, sessionID string) []llm.Message {
	if sessionID == "" || o.sessionRepo == nil {
		return nil
	}
	sess, err := o.sessionRepo.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrSessionNotFound) {
			logger.WarnCF("orchestrator", "session load failed", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
		return nil
	}

	turns := sess.GetRecentHistory(o.opts.HistoryTurns)
	messages := make([]llm.Message, 0, len(turns)*2+1)
	for _, t := range turns {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: t.Query},
			llm.Message{Role: llm.RoleAssistant, Content: t.Reply},
		)
	}
	return messages
}
