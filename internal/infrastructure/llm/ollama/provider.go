package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Nyukimin/schooloo/internal/domain/llm"
)

// OllamaProvider generates text with a local Ollama server
type OllamaProvider struct {
	http  *resty.Client
	model string
}

// NewOllamaProvider creates an OllamaProvider
func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	return &OllamaProvider{
		// local models can be slow to answer
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(120 * time.Second),
		model: model,
	}
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	System  string                 `json:"system,omitempty"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type generateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Generate runs one non-streaming generation
func (p *OllamaProvider) Generate(ctx context.Context, req llm.GenerateRequest) (llm.GenerateResponse, error) {
	options := map[string]interface{}{}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	if req.TopP > 0 {
		options["top_p"] = req.TopP
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(generateRequest{
			Model:   p.model,
			Prompt:  p.buildPrompt(req.Messages),
			System:  req.SystemPrompt,
			Stream:  false,
			Options: options,
		}).
		Post("/api/generate")
	if err != nil {
		return llm.GenerateResponse{}, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.IsError() {
		return llm.GenerateResponse{}, fmt.Errorf("ollama API error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return llm.GenerateResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	reason := out.DoneReason
	if reason == "" {
		reason = "stop"
	}

	return llm.GenerateResponse{
		Content:      out.Response,
		TokensUsed:   out.PromptEvalCount + out.EvalCount,
		FinishReason: reason,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return fmt.Sprintf("ollama-%s", p.model)
}

// buildPrompt flattens the conversation into a single prompt
func (p *OllamaProvider) buildPrompt(messages []llm.Message) string {
	var parts []string
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleUser:
			parts = append(parts, fmt.Sprintf("User: %s", msg.Content))
		case llm.RoleAssistant:
			parts = append(parts, fmt.Sprintf("Assistant: %s", msg.Content))
		case llm.RoleSystem:
			parts = append(parts, fmt.Sprintf("System: %s", msg.Content))
		}
	}
	if len(parts) > 0 {
		parts = append(parts, "Assistant:")
	}
	return strings.Join(parts, "\n")
}
