package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Nyukimin/schooloo/internal/domain/llm"
)

func TestNewClaudeProvider(t *testing.T) {
	provider := NewClaudeProvider("test-api-key", "claude-3-5-sonnet-latest", "")

	if provider == nil {
		t.Fatal("NewClaudeProvider should not return nil")
	}
	if provider.Name() != "claude-claude-3-5-sonnet-latest" {
		t.Errorf("Expected name 'claude-claude-3-5-sonnet-latest', got '%s'", provider.Name())
	}
}

func TestClaudeProviderGenerate_Success(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path '/v1/messages', got '%s'", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-api-key" {
			t.Errorf("Expected API key header, got '%s'", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("anthropic-version header should be set")
		}
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "msg_123",
			"type":  "message",
			"role":  "assistant",
			"model": "claude-test",
			"content": []map[string]interface{}{
				{"type": "text", "text": "Here are two schools."},
			},
			"stop_reason": "end_turn",
			"usage": map[string]interface{}{
				"input_tokens":  10,
				"output_tokens": 20,
			},
		})
	}))
	defer server.Close()

	provider := NewClaudeProvider("test-api-key", "claude-test", server.URL)

	resp, err := provider.Generate(context.Background(), llm.GenerateRequest{
		SystemPrompt: "You are helpful.",
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "skipped"},
			{Role: llm.RoleUser, Content: "Schools in Delhi?"},
		},
		MaxTokens:   100,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Content != "Here are two schools." {
		t.Errorf("Unexpected content: %q", resp.Content)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Expected 30 tokens, got %d", resp.TokensUsed)
	}
	if resp.FinishReason != "end_turn" {
		t.Errorf("Expected finish reason 'end_turn', got '%s'", resp.FinishReason)
	}

	messages, _ := body["messages"].([]interface{})
	if len(messages) != 1 {
		t.Errorf("Expected 1 message (system skipped), got %d", len(messages))
	}
	if body["system"] == nil {
		t.Error("system prompt should be sent")
	}
}

func TestClaudeProviderGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"Rate limited"}}`))
	}))
	defer server.Close()

	provider := NewClaudeProvider("test-api-key", "claude-test", server.URL)

	_, err := provider.Generate(context.Background(), llm.GenerateRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if !llm.IsQuotaError(err) {
		t.Errorf("Expected quota error, got %v", err)
	}
}
