package api

import (
	"context"
	"fmt"
	"time"

	"recipe-discovery/internal/api/handlers/health"
	"recipe-discovery/internal/core/ai/cache"
	"recipe-discovery/internal/core/ai/gemini"
	"recipe-discovery/internal/core/ai/openrouter"
	"recipe-discovery/internal/core/ai/provider"
	aiService "recipe-discovery/internal/core/ai/service"
	"recipe-discovery/internal/core/chat"
	"recipe-discovery/internal/core/httpclient"
	"recipe-discovery/internal/core/image"
	"recipe-discovery/internal/core/nutrition"
	"recipe-discovery/internal/core/recipe"
	"recipe-discovery/internal/core/search"
	"recipe-discovery/internal/core/vision"
	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/infrastructure/database"
	"recipe-discovery/internal/infrastructure/repositories"
	"recipe-discovery/internal/infrastructure/storage"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

// Core 不需要儲存層的服務，CLI 也會使用
type Core struct {
	Images    *image.Service
	Detector  *vision.Detector
	Estimator *nutrition.Estimator
	Text      provider.Provider
	Cache     cache.Cache
}

// NewCore 建立供應商客戶端與核心服務
func NewCore(cfg *config.Config) (*Core, error) {
	responseCache, err := cache.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	images := image.NewService(cfg.Image.MaxSizeBytes, cfg.Image.MaxDimension,
		httpclient.New(httpclient.OptionsFrom(cfg.HTTP, "image-download", "")))

	detector := vision.NewDetector(cfg.Roboflow,
		httpclient.New(httpclient.OptionsFrom(cfg.HTTP, "roboflow", cfg.Roboflow.BaseURL)), images)

	geminiClient := gemini.NewClient(cfg.Gemini,
		httpclient.New(httpclient.OptionsFrom(cfg.HTTP, "gemini", cfg.Gemini.BaseURL)))
	geminiService := aiService.NewService(geminiClient, responseCache)

	estimator := nutrition.NewEstimator(geminiService, images, cfg.Gemini.Models)

	text := provider.Provider(geminiService)
	if cfg.Gemini.APIKey == "" && cfg.OpenRouter.APIKey != "" {
		orClient := openrouter.NewClient(cfg.OpenRouter,
			httpclient.New(httpclient.OptionsFrom(cfg.HTTP, "openrouter", cfg.OpenRouter.BaseURL)))
		text = aiService.NewService(orClient, responseCache)
	}

	common.LogInfo("Core services initialized",
		zap.Strings("nutrition_models", estimator.Models()),
		zap.String("text_provider", text.Name()),
		zap.Bool("cache_enabled", responseCache != nil),
		zap.Duration("http_timeout", cfg.HTTP.Timeout),
	)

	return &Core{
		Images:    images,
		Detector:  detector,
		Estimator: estimator,
		Text:      text,
		Cache:     responseCache,
	}, nil
}

// Services HTTP 服務所需的全部依賴
type Services struct {
	*Core
	Config      *config.Config
	Recipes     *recipe.Service
	Assistant   *chat.Assistant
	ImageLookup *search.ImageLookup
	History     *storage.SQLiteStorage

	checks  map[string]health.CheckFunc
	closers []func(context.Context) error
}

// NewServices 建立核心服務並連線儲存層；未設定的儲存層會略過
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	core, err := NewCore(cfg)
	if err != nil {
		return nil, err
	}

	s := &Services{
		Core:   core,
		Config: cfg,
		checks: map[string]health.CheckFunc{},
	}
	if rc, ok := core.Cache.(*cache.RedisCache); ok {
		s.checks["redis"] = rc.Ping
		s.onClose(func(context.Context) error { return rc.Close() })
	}
	if m, ok := core.Cache.(*cache.Manager); ok {
		s.onClose(func(context.Context) error { return m.Close() })
	}

	var recipeStore recipe.RecipeStore
	var planStore recipe.MealPlanStore
	if cfg.MongoDB.URI != "" {
		mongo := database.NewMongoDB(cfg.MongoDB)
		timeout := cfg.MongoDB.ConnectTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		err := mongo.Connect(connectCtx)
		cancel()
		if err != nil {
			s.Close(ctx)
			return nil, err
		}
		recipeStore = repositories.NewRecipeRepository(mongo)
		planStore = repositories.NewMealPlanRepository(mongo)
		s.checks["mongodb"] = mongo.Health
		s.onClose(mongo.Close)
	} else {
		common.LogWarn("MongoDB URI not set, created recipes and meal plans are disabled")
	}

	var historyStore recipe.HistoryStore
	if cfg.SQLite.Path != "" {
		history, err := storage.NewSQLiteStorage(cfg.SQLite.Path)
		if err != nil {
			s.Close(ctx)
			return nil, err
		}
		s.History = history
		historyStore = history
		s.checks["sqlite"] = history.Ping
		s.onClose(func(context.Context) error { return history.Close() })
	}

	recipeClient := search.NewSpoonacularClient(cfg.Spoonacular,
		httpclient.New(httpclient.OptionsFrom(cfg.HTTP, "spoonacular", cfg.Spoonacular.BaseURL)))
	photoClient := search.NewUnsplashClient(cfg.Unsplash,
		httpclient.New(httpclient.OptionsFrom(cfg.HTTP, "unsplash", cfg.Unsplash.BaseURL)))

	s.ImageLookup = search.NewImageLookup(photoClient, nil)
	s.Assistant = chat.NewAssistant(core.Text, s.ImageLookup, "")
	s.Recipes = recipe.NewService(
		recipeClient,
		recipe.NewAdvisor(core.Text, ""),
		recipeStore,
		planStore,
		historyStore,
		cfg.Spoonacular.Number,
	)

	return s, nil
}

// Providers 各供應商是否已設定憑證
func (s *Services) Providers() map[string]bool {
	cfg := s.Config
	return map[string]bool{
		"roboflow":    cfg.Roboflow.APIKey != "" && cfg.Roboflow.Model != "",
		"gemini":      cfg.Gemini.APIKey != "",
		"openrouter":  cfg.OpenRouter.APIKey != "",
		"spoonacular": cfg.Spoonacular.APIKey != "",
		"unsplash":    cfg.Unsplash.AccessKey != "",
	}
}

// Checks 就緒檢查
func (s *Services) Checks() map[string]health.CheckFunc {
	return s.checks
}

func (s *Services) onClose(fn func(context.Context) error) {
	s.closers = append(s.closers, fn)
}

// Close 依建立的相反順序關閉
func (s *Services) Close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			common.LogWarn("Failed to close dependency", zap.Error(err))
		}
	}
	s.closers = nil
}
