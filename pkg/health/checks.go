package health

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// CheckFunc probes one dependency and returns ok with a short message
type CheckFunc func(ctx context.Context) (bool, string)

// Result is the outcome of one check
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Report aggregates every registered check
type Report struct {
	Status string            `json:"status"` // ok or degraded
	Checks map[string]Result `json:"checks"`
}

// Checker runs named checks concurrently
type Checker struct {
	mu     sync.RWMutex
	names  []string
	checks map[string]CheckFunc
}

// NewChecker creates an empty Checker
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]CheckFunc)}
}

// Register adds or replaces a check
func (c *Checker) Register(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.checks[name]; !exists {
		c.names = append(c.names, name)
	}
	c.checks[name] = fn
}

// Names returns the registered check names in registration order
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.names...)
}

// Run executes every check. Any failure makes the report degraded.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	report := Report{Status: "ok", Checks: make(map[string]Result, len(checks))}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, fn := range checks {
		wg.Add(1)
		go func(name string, fn CheckFunc) {
			defer wg.Done()
			ok, msg := fn(ctx)
			mu.Lock()
			report.Checks[name] = Result{OK: ok, Message: msg}
			if !ok {
				report.Status = "degraded"
			}
			mu.Unlock()
		}(name, fn)
	}
	wg.Wait()
	return report
}

// BackendCheck probes the school backend /health endpoint.
// baseURL may carry the /api prefix used by the client.
func BackendCheck(baseURL string, timeout time.Duration) CheckFunc {
	root := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api")
	client := resty.New().SetTimeout(timeout)

	return func(ctx context.Context) (bool, string) {
		resp, err := client.R().SetContext(ctx).Get(root + "/health")
		if err != nil {
			return false, fmt.Sprintf("unreachable: %v", err)
		}
		if resp.StatusCode() != 200 {
			return false, fmt.Sprintf("status %d", resp.StatusCode())
		}

		var body struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return false, fmt.Sprintf("decode error: %v", err)
		}
		if body.Status != "healthy" {
			return false, fmt.Sprintf("backend reports %q", body.Status)
		}
		return true, "ok"
	}
}

// OllamaCheck probes the Ollama server root
func OllamaCheck(baseURL string, timeout time.Duration) CheckFunc {
	client := resty.New().SetTimeout(timeout)
	return func(ctx context.Context) (bool, string) {
		resp, err := client.R().SetContext(ctx).Get(baseURL)
		if err != nil {
			return false, fmt.Sprintf("unreachable: %v", err)
		}
		if resp.StatusCode() != 200 {
			return false, fmt.Sprintf("status %d", resp.StatusCode())
		}
		return true, "ok"
	}
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// OllamaModelsCheck verifies that every model is pulled on the Ollama server.
// A name without a tag matches its :latest tag.
func OllamaModelsCheck(baseURL string, timeout time.Duration, models []string) CheckFunc {
	client := resty.New().SetTimeout(timeout)
	tagsURL := strings.TrimSuffix(baseURL, "/") + "/api/tags"

	return func(ctx context.Context) (bool, string) {
		resp, err := client.R().SetContext(ctx).Get(tagsURL)
		if err != nil {
			return false, fmt.Sprintf("unreachable: %v", err)
		}

		var tags ollamaTagsResponse
		if err := json.Unmarshal(resp.Body(), &tags); err != nil {
			return false, fmt.Sprintf("decode error: %v", err)
		}

		pulled := make(map[string]bool, len(tags.Models))
		for _, m := range tags.Models {
			pulled[m.Name] = true
		}

		var missing []string
		for _, name := range models {
			if pulled[name] || (!strings.Contains(name, ":") && pulled[name+":latest"]) {
				continue
			}
			missing = append(missing, name)
		}

		if len(missing) > 0 {
			return false, fmt.Sprintf("not pulled: %s", strings.Join(missing, ", "))
		}
		return true, fmt.Sprintf("%d/%d models ok", len(models), len(models))
	}
}
