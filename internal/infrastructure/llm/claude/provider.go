package claude

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Nyukimin/schooloo/internal/domain/llm"
)

// ClaudeProvider generates text with the Anthropic Messages API
type ClaudeProvider struct {
	client anthropic.Client
	model  string
}

// NewClaudeProvider creates a ClaudeProvider. baseURL may be empty.
func NewClaudeProvider(apiKey, model, baseURL string) *ClaudeProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(120 * time.Second),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &ClaudeProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Generate runs one non-streaming generation
func (p *ClaudeProvider) Generate(ctx context.Context, req llm.GenerateRequest) (llm.GenerateResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		Messages:  p.convertMessages(req.Messages),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		if llm.IsQuotaError(err) {
			return llm.GenerateResponse{}, fmt.Errorf("%w: %v", llm.ErrQuotaExceeded, err)
		}
		return llm.GenerateResponse{}, fmt.Errorf("claude API error: %w", err)
	}

	var content strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return llm.GenerateResponse{
		Content:      content.String(),
		TokensUsed:   int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		FinishReason: string(msg.StopReason),
	}, nil
}

// Name returns the provider name
func (p *ClaudeProvider) Name() string {
	return fmt.Sprintf("claude-%s", p.model)
}

// convertMessages maps domain messages to Claude messages.
// The system prompt is sent at the top level, so system messages are skipped.
func (p *ClaudeProvider) convertMessages(messages []llm.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case llm.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out
}
