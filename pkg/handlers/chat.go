// Package handlers exposes the HTTP surface: the chat endpoint and the
// health probes.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/models"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/services"
)

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	service *services.ChatService
	logger  *zap.Logger
}

func NewChatHandler(service *services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.Chat)
}

// Chat handles POST /api/chat requests.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = WriteError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a message field")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		_ = WriteError(w, http.StatusBadRequest, "invalid_request", "message must not be empty")
		return
	}

	payload, err := h.service.Handle(r.Context(), req.Message)
	if err != nil {
		h.logger.Error("chat pipeline failed", zap.Error(err))
		_ = WriteError(w, http.StatusInternalServerError, "internal_error", "failed to process message")
		return
	}

	status := http.StatusOK
	if errPayload, ok := payload.(*models.ErrorResponse); ok {
		if errPayload.Retryable {
			status = http.StatusServiceUnavailable
		} else {
			status = http.StatusUnprocessableEntity
		}
	}

	if err := WriteJSON(w, status, payload); err != nil {
		h.logger.Error("failed to encode chat response", zap.Error(err))
	}
}
