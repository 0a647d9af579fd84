package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Nyukimin/schooloo/internal/adapter/config"
	"github.com/Nyukimin/schooloo/internal/application/formatter"
	"github.com/Nyukimin/schooloo/internal/application/orchestrator"
	"github.com/Nyukimin/schooloo/internal/domain/llm"
	"github.com/Nyukimin/schooloo/internal/domain/tool"
	"github.com/Nyukimin/schooloo/internal/infrastructure/backend"
	"github.com/Nyukimin/schooloo/internal/infrastructure/llm/claude"
	"github.com/Nyukimin/schooloo/internal/infrastructure/llm/gemini"
	"github.com/Nyukimin/schooloo/internal/infrastructure/llm/ollama"
	"github.com/Nyukimin/schooloo/internal/infrastructure/llm/openai"
	"github.com/Nyukimin/schooloo/internal/infrastructure/metrics"
	sessionstore "github.com/Nyukimin/schooloo/internal/infrastructure/persistence/session"
	rules "github.com/Nyukimin/schooloo/internal/infrastructure/routing"
	"github.com/Nyukimin/schooloo/internal/infrastructure/tools"
	"github.com/Nyukimin/schooloo/pkg/health"
	"github.com/Nyukimin/schooloo/pkg/logger"
)

// app holds the wired dependencies shared by every command
type app struct {
	registry *tool.Registry
	orch     *orchestrator.DispatchOrchestrator
	provider llm.LLMProvider
	metrics  *metrics.Metrics
	checker  *health.Checker
}

// buildApp wires classifier, tools, formatter, sessions and the optional model
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	// 1. Backend client + tool registry
	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	client := backend.NewClient(cfg.Backend.URL, timeout)

	registry, err := tools.NewRegistry(client)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	// 2. Classifier, checked against the registry
	classifier := rules.NewRuleDictionary()
	if err := checkCatalog(classifier.Tools(), registry); err != nil {
		return nil, err
	}

	// 3. Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m, err = metrics.New()
		if err != nil {
			return nil, err
		}
	}

	runner := tools.NewToolRunner(registry)
	if m != nil {
		runner.WithObserver(m)
	}

	// 4. Language model (optional)
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		logger.WarnCF("main", "Language model disabled", map[string]interface{}{
			"provider": cfg.LLM.Provider,
			"reason":   err.Error(),
		})
		provider = nil
	}

	// 5. Orchestrator
	orch := orchestrator.NewDispatchOrchestrator(
		classifier,
		runner,
		formatter.New(),
		sessionstore.NewJSONSessionRepository(cfg.Session.StorageDir),
		provider,
		orchestrator.Options{
			MaxTools:     cfg.Dispatch.MaxTools,
			HistoryTurns: cfg.Session.HistoryTurns,
			Temperature:  cfg.LLM.Temperature,
			TopP:         cfg.LLM.TopP,
			MaxTokens:    cfg.LLM.MaxTokens,
		},
	).WithArgExtractor(rules.ExtractArgs)
	if m != nil {
		orch.WithObserver(m)
	}

	// 6. Readiness checks
	checker := health.NewChecker()
	checker.Register("backend", health.BackendCheck(cfg.Backend.URL, 3*time.Second))
	if cfg.LLM.Provider == config.ProviderOllama {
		checker.Register("ollama", health.OllamaCheck(cfg.Ollama.BaseURL, 3*time.Second))
		checker.Register("ollama_models", health.OllamaModelsCheck(cfg.Ollama.BaseURL, 3*time.Second, []string{cfg.Ollama.Model}))
	}

	logger.DebugCF("main", "Dependency injection complete", map[string]interface{}{
		"tools":    registry.Len(),
		"provider": providerName(provider),
	})

	return &app{
		registry: registry,
		orch:     orch,
		provider: provider,
		metrics:  m,
		checker:  checker,
	}, nil
}

func (a *app) providerName() string {
	return providerName(a.provider)
}

func (a *app) metricsHandler() http.Handler {
	if a.metrics == nil {
		return nil
	}
	return a.metrics.Handler()
}

func (a *app) close() {
	if err := a.metrics.Shutdown(context.Background()); err != nil {
		logger.WarnCF("main", "Metrics shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}

func providerName(p llm.LLMProvider) string {
	if p == nil {
		return ""
	}
	return p.Name()
}

// checkCatalog fails when the classifier can name a tool the registry lacks
func checkCatalog(names []string, registry *tool.Registry) error {
	for _, name := range names {
		if _, ok := registry.Lookup(name); !ok {
			return fmt.Errorf("classifier references unregistered tool: %s", name)
		}
	}
	return nil
}

// newProvider builds the configured chat model. Hosted providers need an API key.
func newProvider(ctx context.Context, cfg *config.Config) (llm.LLMProvider, error) {
	if cfg.LLM.Provider != config.ProviderOllama && cfg.APIKey() == "" {
		return nil, fmt.Errorf("no API key for %s", cfg.LLM.Provider)
	}

	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		return gemini.NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
	case config.ProviderOpenAI:
		return openai.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL), nil
	case config.ProviderDeepSeek:
		return openai.NewOpenAIProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.Model, cfg.DeepSeek.BaseURL).WithVendor("deepseek"), nil
	case config.ProviderClaude:
		return claude.NewClaudeProvider(cfg.Claude.APIKey, cfg.Claude.Model, cfg.Claude.BaseURL), nil
	case config.ProviderOllama:
		return ollama.NewOllamaProvider(cfg.Ollama.BaseURL, cfg.Ollama.Model), nil
	}
	return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
}
