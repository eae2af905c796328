package recipe

import (
	"net/http"

	"recipe-discovery/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImageRequest 圖片請求；image 為 URL 或 data URI
type ImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// IngredientsResponse 偵測到的食材
type IngredientsResponse struct {
	Ingredients []string `json:"ingredients"`
	Count       int      `json:"count"`
}

// HandleDetectIngredients POST /ingredients/detect
func (h *Handler) HandleDetectIngredients(c *gin.Context) {
	var req ImageRequest
	if !h.bind(c, &req) {
		return
	}

	common.LogDebug("開始處理食材偵測請求",
		zap.String("request_id", common.RequestID(c)),
		zap.String("image_type", imageKind(req.Image)),
	)

	ingredients, err := h.detector.DetectIngredients(c.Request.Context(), req.Image)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, IngredientsResponse{
		Ingredients: ingredients,
		Count:       len(ingredients),
	})
}
