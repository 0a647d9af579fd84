package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/Nyukimin/schooloo/internal/domain/llm"
)

// OpenAIProvider generates text with an OpenAI-compatible chat completions API.
// DeepSeek and other compatible vendors are reached through baseURL.
type OpenAIProvider struct {
	client openai.Client
	model  string
	name   string
}

// NewOpenAIProvider creates an OpenAIProvider. baseURL may be empty.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(120 * time.Second),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
		name:   "openai",
	}
}

// WithVendor changes the name prefix, e.g. "deepseek"
func (p *OpenAIProvider) WithVendor(vendor string) *OpenAIProvider {
	if vendor != "" {
		p.name = vendor
	}
	return p
}

// Generate runs one non-streaming chat completion
func (p *OpenAIProvider) Generate(ctx context.Context, req llm.GenerateRequest) (llm.GenerateResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: p.convertMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(req.TopP)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if llm.IsQuotaError(err) {
			return llm.GenerateResponse{}, fmt.Errorf("%w: %v", llm.ErrQuotaExceeded, err)
		}
		return llm.GenerateResponse{}, fmt.Errorf("%s API error: %w", p.name, err)
	}

	if len(completion.Choices) == 0 {
		return llm.GenerateResponse{}, llm.ErrEmptyResponse
	}

	choice := completion.Choices[0]
	return llm.GenerateResponse{
		Content:      choice.Message.Content,
		TokensUsed:   int(completion.Usage.TotalTokens),
		FinishReason: string(choice.FinishReason),
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return fmt.Sprintf("%s-%s", p.name, p.model)
}

// convertMessages maps the system prompt and domain messages to chat messages
func (p *OpenAIProvider) convertMessages(req llm.GenerateRequest) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		out = append(out, openai.SystemMessage(req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case llm.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case llm.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		case llm.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		}
	}
	return out
}
