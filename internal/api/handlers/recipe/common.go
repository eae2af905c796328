package recipe

import (
	"context"
	"strconv"
	"strings"

	"recipe-discovery/internal/core/ai/provider"
	"recipe-discovery/internal/core/chat"
	recipeService "recipe-discovery/internal/core/recipe"
	"recipe-discovery/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

const maxListLimit = 100

// IngredientDetector 圖片食材偵測
type IngredientDetector interface {
	DetectIngredients(ctx context.Context, source string) ([]string, error)
}

// NutritionEstimator 圖片營養估算
type NutritionEstimator interface {
	EstimateNutrition(ctx context.Context, source string) (*common.NutritionFacts, error)
}

// NutritionLog 營養估算紀錄
type NutritionLog interface {
	SaveNutrition(ctx context.Context, entry *common.NutritionEntry) error
	ListNutrition(ctx context.Context, userID string, limit int) ([]*common.NutritionEntry, error)
}

// Assistant 烹飪助理
type Assistant interface {
	Ask(ctx context.Context, history []provider.Message, question string) (*chat.Reply, error)
}

// ImageFinder 依關鍵字找圖片
type ImageFinder interface {
	Find(ctx context.Context, query string) (string, error)
}

// Handler 食譜探索 API
type Handler struct {
	detector     IngredientDetector
	estimator    NutritionEstimator
	recipes      *recipeService.Service
	assistant    Assistant
	images       ImageFinder
	nutritionLog NutritionLog
	debug        bool
}

// Options Handler 依賴；NutritionLog 可為 nil
type Options struct {
	Detector     IngredientDetector
	Estimator    NutritionEstimator
	Recipes      *recipeService.Service
	Assistant    Assistant
	Images       ImageFinder
	NutritionLog NutritionLog
	Debug        bool
}

// NewHandler 創建 Handler
func NewHandler(opts Options) *Handler {
	return &Handler{
		detector:     opts.Detector,
		estimator:    opts.Estimator,
		recipes:      opts.Recipes,
		assistant:    opts.Assistant,
		images:       opts.Images,
		nutritionLog: opts.NutritionLog,
		debug:        opts.Debug,
	}
}

// Register 註冊路由
func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/ingredients/detect", h.HandleDetectIngredients)

	api.POST("/nutrition/estimate", h.HandleEstimateNutrition)
	api.GET("/nutrition/log", h.HandleNutritionLog)

	api.POST("/recipes/match", h.HandleMatch)
	api.POST("/recipes/substitutions", h.HandleSubstitutions)
	api.POST("/recipes", h.HandleCreateRecipe)
	api.GET("/recipes", h.HandleListRecipes)
	api.DELETE("/recipes/:id", h.HandleDeleteRecipe)

	search := api.Group("/search")
	{
		search.GET("/random", h.HandleRandom)
		search.GET("/cuisine/:cuisine", h.HandleByCuisine)
		search.GET("/recipes/:id", h.HandleGetRecipe)
	}

	api.POST("/plans", h.HandleCreatePlan)
	api.GET("/plans", h.HandleListPlans)
	api.DELETE("/plans/:id", h.HandleDeletePlan)

	api.GET("/history", h.HandleHistory)

	api.POST("/chat", h.HandleChat)
	api.GET("/images", h.HandleImage)
}

func (h *Handler) fail(c *gin.Context, err error) {
	common.WriteError(c, err, h.debug)
}

func (h *Handler) bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.fail(c, common.InvalidInputError("invalid request body", err))
		return false
	}
	return true
}

// queryInt 讀取整數查詢參數，缺少時回傳 def，上限 maxListLimit
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, common.InvalidInputError(key+" must be a positive integer", err)
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}

// imageKind 日誌用的圖片來源類型
func imageKind(source string) string {
	switch {
	case source == "":
		return "empty"
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return "url"
	case strings.HasPrefix(source, "data:image/"):
		return "data_uri"
	default:
		return "path"
	}
}
