package recipe

import (
	"net/http"
	"time"

	"recipe-discovery/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NutritionResponse 營養估算結果
type NutritionResponse struct {
	Nutrition *common.NutritionFacts `json:"nutrition"`
}

// HandleEstimateNutrition POST /nutrition/estimate
func (h *Handler) HandleEstimateNutrition(c *gin.Context) {
	var req ImageRequest
	if !h.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	facts, err := h.estimator.EstimateNutrition(ctx, req.Image)
	if err != nil {
		h.fail(c, err)
		return
	}

	if h.nutritionLog != nil {
		entry := &common.NutritionEntry{
			ID:        common.GenerateUUID(),
			UserID:    common.UserID(c),
			Facts:     *facts,
			CreatedAt: time.Now().UTC(),
		}
		if err := h.nutritionLog.SaveNutrition(ctx, entry); err != nil {
			common.LogWarn("營養紀錄寫入失敗",
				zap.String("request_id", common.RequestID(c)),
				zap.Error(err),
			)
		}
	}

	c.JSON(http.StatusOK, NutritionResponse{Nutrition: facts})
}

// HandleNutritionLog GET /nutrition/log
func (h *Handler) HandleNutritionLog(c *gin.Context) {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		h.fail(c, err)
		return
	}

	entries := []*common.NutritionEntry{}
	if h.nutritionLog != nil {
		entries, err = h.nutritionLog.ListNutrition(c.Request.Context(), common.UserID(c), limit)
		if err != nil {
			h.fail(c, common.InternalError("failed to load nutrition log", err))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
