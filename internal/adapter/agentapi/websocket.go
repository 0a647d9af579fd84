package agentapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Nyukimin/schooloo/internal/application/orchestrator"
	"github.com/Nyukimin/schooloo/pkg/logger"
)

// Socket message types
const (
	MessageDispatch = "dispatch"
	MessageChat     = "chat"
	MessageError    = "error"
)

// SocketRequest is one client frame on /ws
type SocketRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Role    string `json:"role"`
	Ground  bool   `json:"ground"`
}

// SocketResponse is one server frame on /ws
type SocketResponse struct {
	Type      string   `json:"type"`
	SessionID string   `json:"session_id"`
	JobID     string   `json:"job_id,omitempty"`
	Response  string   `json:"response,omitempty"`
	ToolsUsed []string `json:"tools_used,omitempty"`
	Success   bool     `json:"success"`
	Error     string   `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket serves one conversation per connection. Type defaults to dispatch.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnCF(component, "WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = "ws-" + uuid.New().String()
	}

	logger.InfoCF(component, "WebSocket connected", map[string]interface{}{
		"session_id": sessionID,
	})

	for {
		var req SocketRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WarnCF(component, "WebSocket read failed", map[string]interface{}{
					"session_id": sessionID,
					"error":      err.Error(),
				})
			}
			return
		}

		resp := h.handleFrame(r, sessionID, req)
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (h *Handler) handleFrame(r *http.Request, sessionID string, req SocketRequest) SocketResponse {
	if strings.TrimSpace(req.Message) == "" {
		return SocketResponse{Type: MessageError, SessionID: sessionID, Error: "message is required"}
	}

	switch req.Type {
	case "", MessageDispatch:
		out := h.agent.Dispatch(r.Context(), orchestrator.DispatchRequest{
			SessionID: sessionID,
			Channel:   "ws",
			Text:      req.Message,
			Role:      req.Role,
		})
		return SocketResponse{
			Type:      MessageDispatch,
			SessionID: sessionID,
			JobID:     out.JobID,
			Response:  out.Response,
			ToolsUsed: out.ToolsUsed,
			Success:   out.Success,
			Error:     out.Error,
		}

	case MessageChat:
		out, err := h.agent.Chat(r.Context(), orchestrator.ChatRequest{
			SessionID: sessionID,
			Channel:   "ws",
			Message:   req.Message,
			Role:      req.Role,
			Ground:    req.Ground,
		})
		if err != nil {
			_, msg := chatErrorStatus(err)
			return SocketResponse{Type: MessageError, SessionID: sessionID, Error: msg}
		}
		return SocketResponse{
			Type:      MessageChat,
			SessionID: sessionID,
			JobID:     out.JobID,
			Response:  out.Message,
			ToolsUsed: out.ToolsUsed,
			Success:   true,
		}
	}

	return SocketResponse{Type: MessageError, SessionID: sessionID, Error: "unknown message type: " + req.Type}
}
