package recipe

import (
	"net/http"

	"recipe-discovery/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// MatchRequest 以現有食材比對食譜
type MatchRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
}

// SubstitutionRequest 缺少食材替代分析
type SubstitutionRequest struct {
	Recipe  string   `json:"recipe" binding:"required"`
	Missing []string `json:"missing"`
}

// CreateRecipeRequest 自建食譜
type CreateRecipeRequest struct {
	Title        string   `json:"title" binding:"required"`
	Image        string   `json:"image,omitempty"`
	Ingredients  []string `json:"ingredients" binding:"required"`
	Instructions string   `json:"instructions,omitempty"`
	Cuisine      string   `json:"cuisine,omitempty"`
	ReadyMinutes int      `json:"ready_minutes,omitempty"`
	Servings     int      `json:"servings,omitempty"`
}

// HandleMatch POST /recipes/match
func (h *Handler) HandleMatch(c *gin.Context) {
	var req MatchRequest
	if !h.bind(c, &req) {
		return
	}

	summary, err := h.recipes.Match(c.Request.Context(), common.UserID(c), req.Ingredients)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HandleSubstitutions POST /recipes/substitutions
func (h *Handler) HandleSubstitutions(c *gin.Context) {
	var req SubstitutionRequest
	if !h.bind(c, &req) {
		return
	}

	summary, err := h.recipes.Substitutions(c.Request.Context(), req.Recipe, req.Missing)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HandleRandom GET /search/random
func (h *Handler) HandleRandom(c *gin.Context) {
	number, err := queryInt(c, "number", 0)
	if err != nil {
		h.fail(c, err)
		return
	}

	recipes, err := h.recipes.Random(c.Request.Context(), number)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// HandleByCuisine GET /search/cuisine/:cuisine
func (h *Handler) HandleByCuisine(c *gin.Context) {
	number, err := queryInt(c, "number", 0)
	if err != nil {
		h.fail(c, err)
		return
	}

	recipes, err := h.recipes.ByCuisine(c.Request.Context(), c.Param("cuisine"), number)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// HandleGetRecipe GET /search/recipes/:id?source=created|api
func (h *Handler) HandleGetRecipe(c *gin.Context) {
	source := common.RecipeSource(c.DefaultQuery("source", string(common.SourceAPI)))
	if source != common.SourceAPI && source != common.SourceCreated {
		h.fail(c, common.InvalidInputError("source must be created or api", nil))
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), common.UserID(c), c.Param("id"), source)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// HandleCreateRecipe POST /recipes
func (h *Handler) HandleCreateRecipe(c *gin.Context) {
	var req CreateRecipeRequest
	if !h.bind(c, &req) {
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), common.UserID(c), &common.Recipe{
		Title:        req.Title,
		Image:        req.Image,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Cuisine:      req.Cuisine,
		ReadyMinutes: req.ReadyMinutes,
		Servings:     req.Servings,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// HandleListRecipes GET /recipes
func (h *Handler) HandleListRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListCreated(c.Request.Context(), common.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// HandleDeleteRecipe DELETE /recipes/:id
func (h *Handler) HandleDeleteRecipe(c *gin.Context) {
	if err := h.recipes.DeleteCreated(c.Request.Context(), common.UserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
