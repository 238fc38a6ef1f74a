package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/relaychat/relaychat-server/internal/core"
	"github.com/relaychat/relaychat-server/internal/proto"
)

// HistoryHandlers serves the synchronous history endpoints, which read
// and clear the persisted log directly, bypassing the live fan-out.
type HistoryHandlers struct {
	svc *core.ChatService
	log *zerolog.Logger
}

// NewHistoryHandlers creates the history endpoint handlers.
func NewHistoryHandlers(svc *core.ChatService, logger *zerolog.Logger) *HistoryHandlers {
	return &HistoryHandlers{svc: svc, log: logger}
}

// StatusResponse is the body of the clear_history endpoint.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// GetHistory handles GET /get_history. The response is a JSON array in
// oldest-to-newest order, same shape as the chat_message payload.
func (h *HistoryHandlers) GetHistory(c *gin.Context) {
	messages, err := h.svc.History(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, StatusResponse{
			Status:  "error",
			Message: "failed to load history",
		})
		return
	}

	out := make([]proto.ChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, chatMessageFromCore(m))
	}
	c.JSON(http.StatusOK, out)
}

// ClearHistory handles POST /clear_history.
func (h *HistoryHandlers) ClearHistory(c *gin.Context) {
	if err := h.svc.ClearHistory(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("failed to clear history")
		c.JSON(http.StatusInternalServerError, StatusResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	h.log.Info().Msg("history cleared")
	c.JSON(http.StatusOK, StatusResponse{Status: "success", Message: "history cleared"})
}
