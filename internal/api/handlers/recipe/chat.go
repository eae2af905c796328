package recipe

import (
	"net/http"

	"recipe-discovery/internal/core/ai/provider"
	"recipe-discovery/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// ChatRequest 助理問答
type ChatRequest struct {
	Question string             `json:"question" binding:"required"`
	History  []provider.Message `json:"history,omitempty"`
}

// HandleChat POST /chat
func (h *Handler) HandleChat(c *gin.Context) {
	var req ChatRequest
	if !h.bind(c, &req) {
		return
	}
	for _, m := range req.History {
		if m.Role != provider.RoleUser && m.Role != provider.RoleAssistant {
			h.fail(c, common.InvalidInputError("history role must be user or assistant", nil))
			return
		}
	}

	reply, err := h.assistant.Ask(c.Request.Context(), req.History, req.Question)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// HandleImage GET /images?query=
func (h *Handler) HandleImage(c *gin.Context) {
	url, err := h.images.Find(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
