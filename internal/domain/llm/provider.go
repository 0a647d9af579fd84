package llm

import "context"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one conversation message
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// GenerateRequest is a text-generation request
type GenerateRequest struct {
	Messages     []Message
	MaxTokens    int
	Temperature  float64
	TopP         float64 // 0 leaves the provider default
	SystemPrompt string
}

// GenerateResponse is a text-generation response
type GenerateResponse struct {
	Content      string
	TokensUsed   int
	FinishReason string
}

// LLMProvider abstracts a hosted text-generation service
type LLMProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Name() string
}
