// Package agentapi exposes the dispatcher and chat over HTTP and WebSocket.
package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Nyukimin/schooloo/internal/application/orchestrator"
	"github.com/Nyukimin/schooloo/internal/domain/llm"
	"github.com/Nyukimin/schooloo/internal/domain/routing"
	"github.com/Nyukimin/schooloo/internal/domain/tool"
	"github.com/Nyukimin/schooloo/pkg/health"
	"github.com/Nyukimin/schooloo/pkg/logger"
)

const component = "agentapi"

// Agent is the orchestrator surface used by the API
type Agent interface {
	Dispatch(ctx context.Context, req orchestrator.DispatchRequest) orchestrator.DispatchResponse
	Classify(text, role string) (routing.Classification, error)
	Chat(ctx context.Context, req orchestrator.ChatRequest) (orchestrator.ChatResponse, error)
}

// Catalog lists the registered tools
type Catalog interface {
	Descriptors() []tool.Descriptor
}

// Info describes the running service
type Info struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Provider string `json:"provider,omitempty"`
	Backend  string `json:"backend"`
}

// Handler is the agent HTTP API
type Handler struct {
	agent   Agent
	catalog Catalog
	info    Info
	metrics http.Handler
	checker *health.Checker
	router  chi.Router
}

// NewHandler builds the router. metrics may be nil.
func NewHandler(agent Agent, catalog Catalog, info Info, metrics http.Handler) *Handler {
	h := &Handler{
		agent:   agent,
		catalog: catalog,
		info:    info,
		metrics: metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})

	r.Get("/api/health", h.handleHealth)
	r.Get("/api/info", h.handleInfo)
	r.Get("/api/agent/tools", h.handleTools)
	r.Post("/api/agent/dispatch", h.handleDispatch)
	r.Post("/api/agent/classify", h.handleClassify)
	r.Post("/api/chat", h.handleChat)
	r.Get("/ws", h.handleWebSocket)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	h.router = r
	return h
}

// WithHealth attaches dependency checks to /api/health
func (h *Handler) WithHealth(checker *health.Checker) *Handler {
	h.checker = checker
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// DispatchRequest is the body of POST /api/agent/dispatch
type DispatchRequest struct {
	Query     string                 `json:"query"`
	Role      string                 `json:"role"`
	SessionID string                 `json:"session_id"`
	Args      map[string]interface{} `json:"args"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message   string `json:"message"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	Ground    bool   `json:"ground"`
}

type toolView struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []paramView `json:"parameters"`
}

type paramView struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": h.info.Name,
		})
		return
	}

	report := h.checker.Run(r.Context())
	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"status":  report.Status,
		"service": h.info.Name,
		"checks":  report.Checks,
	})
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	roles := make([]string, 0, len(routing.Roles()))
	for _, role := range routing.Roles() {
		roles = append(roles, role.String())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":     h.info.Name,
		"version":  h.info.Version,
		"provider": h.info.Provider,
		"backend":  h.info.Backend,
		"roles":    roles,
		"tools":    len(h.catalog.Descriptors()),
	})
}

func (h *Handler) handleTools(w http.ResponseWriter, r *http.Request) {
	descs := h.catalog.Descriptors()
	out := make([]toolView, 0, len(descs))
	for _, d := range descs {
		params := make([]paramView, 0, len(d.Params))
		for _, p := range d.Params {
			params = append(params, paramView{Name: p.Name, Type: string(p.Type), Required: p.Required})
		}
		out = append(out, toolView{Name: d.Name, Description: d.Description, Parameters: params})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": out,
		"count": len(out),
	})
}

func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp := h.agent.Dispatch(r.Context(), orchestrator.DispatchRequest{
		SessionID: req.SessionID,
		Channel:   "api",
		Text:      req.Query,
		Role:      req.Role,
		Args:      req.Args,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	c, err := h.agent.Classify(req.Query, req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"role":    c.Role,
		"query":   c.Query,
		"tools":   c.Tools,
		"primary": c.Primary(),
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	resp, err := h.agent.Chat(r.Context(), orchestrator.ChatRequest{
		SessionID: req.SessionID,
		Channel:   "api",
		Message:   req.Message,
		Role:      req.Role,
		Ground:    req.Ground,
	})
	if err != nil {
		status, msg := chatErrorStatus(err)
		logger.WarnCF(component, "Chat failed", map[string]interface{}{
			"status": status,
			"error":  err.Error(),
		})
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"job_id":      resp.JobID,
		"role":        resp.Role,
		"response":    resp.Message,
		"model":       resp.Model,
		"tools_used":  resp.ToolsUsed,
		"tokens_used": resp.TokensUsed,
	})
}

// chatErrorStatus maps a chat error to an HTTP status and client message
func chatErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, orchestrator.ErrEmptyMessage):
		return http.StatusBadRequest, "Message cannot be empty"
	case errors.Is(err, orchestrator.ErrNoProvider):
		return http.StatusServiceUnavailable, "No language model configured"
	case llm.IsQuotaError(err):
		return http.StatusTooManyRequests, "Model quota exceeded, please retry later"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WarnCF(component, "Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.DebugCF(component, "Request handled", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	})
}
