package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nyukimin/schooloo/internal/adapter/backendapi"
	"github.com/Nyukimin/schooloo/internal/adapter/config"
	"github.com/Nyukimin/schooloo/internal/application/orchestrator"
	"github.com/Nyukimin/schooloo/internal/domain/tool"
	"github.com/Nyukimin/schooloo/internal/infrastructure/persistence/memory"
	rules "github.com/Nyukimin/schooloo/internal/infrastructure/routing"
)

func testConfig(t *testing.T, backendURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Backend.URL = backendURL
	cfg.Session.StorageDir = t.TempDir()
	cfg.Gemini.APIKey = ""
	return cfg
}

func TestBuildApp_EndToEnd(t *testing.T) {
	ts := httptest.NewServer(backendapi.NewServer(memory.NewSampleStore()))
	defer ts.Close()

	a, err := buildApp(context.Background(), testConfig(t, ts.URL+"/api"))
	require.NoError(t, err)
	defer a.close()

	assert.Nil(t, a.provider)
	assert.Equal(t, 14, a.registry.Len())
	require.NotNil(t, a.metrics)

	resp := a.orch.Dispatch(context.Background(), orchestrator.DispatchRequest{
		SessionID: "e2e-parent",
		Text:      "What are the fees at school_001?",
		Role:      "parent",
	})
	assert.True(t, resp.Success, resp.Response)
	assert.Equal(t, "get_fee_structure", resp.InvokedTool)
	assert.Contains(t, resp.Response, "Fee Structure for Delhi Public School:")

	resp = a.orch.Dispatch(context.Background(), orchestrator.DispatchRequest{
		Text: "Show me the best schools in Bangalore",
		Role: "parent",
	})
	assert.True(t, resp.Success, resp.Response)
	assert.Contains(t, resp.Response, "Found 1 schools:")

	resp = a.orch.Dispatch(context.Background(), orchestrator.DispatchRequest{
		Text: "get all leads",
		Role: "admin",
	})
	assert.True(t, resp.Success, resp.Response)
	assert.Equal(t, []string{"get_all_leads"}, resp.ToolsUsed)

	_, err = a.orch.Chat(context.Background(), orchestrator.ChatRequest{Message: "hello"})
	assert.ErrorIs(t, err, orchestrator.ErrNoProvider)

	report := a.checker.Run(context.Background())
	assert.Equal(t, "ok", report.Status)
}

func TestBuildApp_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1/api")
	cfg.Metrics.Enabled = false

	a, err := buildApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.close()

	assert.Nil(t, a.metrics)
	assert.Nil(t, a.metricsHandler())
}

func TestCheckCatalog(t *testing.T) {
	noop := func(ctx context.Context, args tool.Args) (interface{}, error) { return nil, nil }
	registry, err := tool.NewRegistry(tool.Descriptor{Name: "get_faqs", Invoke: noop})
	require.NoError(t, err)

	assert.NoError(t, checkCatalog([]string{"get_faqs"}, registry))
	assert.Error(t, checkCatalog([]string{"get_faqs", "search_schools"}, registry))

	full := rules.NewRuleDictionary().Tools()
	assert.NotEmpty(t, full)
}

func TestNewProvider(t *testing.T) {
	cfg := config.Default()

	cfg.LLM.Provider = config.ProviderGemini
	cfg.Gemini.APIKey = ""
	_, err := newProvider(context.Background(), cfg)
	assert.Error(t, err)

	cfg.LLM.Provider = config.ProviderOllama
	p, err := newProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "ollama-llama3.1", p.Name())

	cfg.LLM.Provider = config.ProviderDeepSeek
	cfg.DeepSeek.APIKey = "sk-test"
	p, err = newProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "deepseek-deepseek-chat", p.Name())

	cfg.LLM.Provider = config.ProviderClaude
	cfg.Claude.APIKey = "sk-ant-test"
	p, err = newProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Contains(t, p.Name(), "claude-")
}
