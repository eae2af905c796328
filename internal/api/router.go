package api

import (
	"net/http"
	"time"

	"recipe-discovery/internal/api/handlers/health"
	recipeHandler "recipe-discovery/internal/api/handlers/recipe"
	"recipe-discovery/internal/api/middleware"
	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 請求體大小上限預設值 (12MB)，需大於圖片上限以容納 base64
const defaultMaxBodySize = 12 << 20

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *Services) *gin.Engine {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	maxBody := cfg.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBody))

	healthHandler := health.NewHandler(cfg.App.Version, svc.Providers(), svc.Checks())
	healthHandler.Register(router)

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Deduplication(cfg.DedupWindow))
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	options := recipeHandler.Options{
		Detector:  svc.Detector,
		Estimator: svc.Estimator,
		Recipes:   svc.Recipes,
		Assistant: svc.Assistant,
		Images:    svc.ImageLookup,
		Debug:     cfg.App.Debug,
	}
	if svc.History != nil {
		options.NutritionLog = svc.History
	}
	recipeHandler.NewHandler(options).Register(api)

	common.LogInfo("Router setup completed",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", maxBody),
	)

	return router
}
