package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Nyukimin/schooloo/internal/domain/llm"
)

func TestNewGeminiProvider(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), "", "", ""); err == nil {
		t.Error("Expected error without API key")
	}

	provider, err := NewGeminiProvider(context.Background(), "test-key", "", "")
	if err != nil {
		t.Fatalf("NewGeminiProvider failed: %v", err)
	}
	if provider.Name() != "gemini-gemini-2.0-flash" {
		t.Errorf("Expected default model name, got '%s'", provider.Name())
	}
}

func TestGeminiProviderGenerate_Success(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("Unexpected path '%s'", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [
					{"text": "thinking...", "thought": true},
					{"text": "Delhi Public School "},
					{"text": "is in New Delhi."}
				]},
				"finishReason": "STOP"
			}],
			"usageMetadata": {"promptTokenCount": 5, "candidatesTokenCount": 7, "totalTokenCount": 12}
		}`))
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(context.Background(), "test-key", "test-model", server.URL)
	if err != nil {
		t.Fatalf("NewGeminiProvider failed: %v", err)
	}

	resp, err := provider.Generate(context.Background(), llm.GenerateRequest{
		SystemPrompt: "You are helpful.",
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "hi"},
			{Role: llm.RoleAssistant, Content: "hello"},
			{Role: llm.RoleSystem, Content: "ignored"},
			{Role: llm.RoleUser, Content: "Where is DPS?"},
		},
		MaxTokens:   100,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Content != "Delhi Public School is in New Delhi." {
		t.Errorf("Unexpected content: %q", resp.Content)
	}
	if resp.TokensUsed != 12 {
		t.Errorf("Expected 12 tokens, got %d", resp.TokensUsed)
	}
	if resp.FinishReason != "STOP" {
		t.Errorf("Expected finish reason STOP, got %s", resp.FinishReason)
	}

	contents, _ := body["contents"].([]interface{})
	if len(contents) != 3 {
		t.Errorf("Expected 3 contents (system skipped), got %d", len(contents))
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Error("systemInstruction should be sent")
	}
}

func TestGeminiProviderGenerate_Quota(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	provider, err := NewGeminiProvider(context.Background(), "test-key", "test-model", server.URL)
	if err != nil {
		t.Fatalf("NewGeminiProvider failed: %v", err)
	}

	_, err = provider.Generate(context.Background(), llm.GenerateRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if !llm.IsQuotaError(err) {
		t.Errorf("Expected quota error, got %v", err)
	}
}

func TestGeminiProviderGenerate_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	provider, _ := NewGeminiProvider(context.Background(), "test-key", "test-model", server.URL)
	_, err := provider.Generate(context.Background(), llm.GenerateRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}
