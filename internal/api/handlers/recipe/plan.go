package recipe

import (
	"net/http"

	"recipe-discovery/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// PlanRequest 餐點計畫
type PlanRequest struct {
	RecipeID    string `json:"recipe_id" binding:"required"`
	RecipeTitle string `json:"recipe_title"`
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	MealType    string `json:"meal_type"`
}

// HandleCreatePlan POST /plans
func (h *Handler) HandleCreatePlan(c *gin.Context) {
	var req PlanRequest
	if !h.bind(c, &req) {
		return
	}

	plan, err := h.recipes.PlanMeal(c.Request.Context(), common.UserID(c), &common.MealPlan{
		RecipeID:    req.RecipeID,
		RecipeTitle: req.RecipeTitle,
		Date:        req.Date,
		MealType:    req.MealType,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// HandleListPlans GET /plans?from=&to=
func (h *Handler) HandleListPlans(c *gin.Context) {
	plans, err := h.recipes.ListPlans(c.Request.Context(), common.UserID(c), c.Query("from"), c.Query("to"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// HandleDeletePlan DELETE /plans/:id
func (h *Handler) HandleDeletePlan(c *gin.Context) {
	if err := h.recipes.DeletePlan(c.Request.Context(), common.UserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleHistory GET /history
func (h *Handler) HandleHistory(c *gin.Context) {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		h.fail(c, err)
		return
	}

	views, err := h.recipes.History(c.Request.Context(), common.UserID(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": views})
}
