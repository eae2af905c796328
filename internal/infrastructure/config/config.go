package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Roboflow    RoboflowConfig    `mapstructure:"roboflow"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	OpenRouter  OpenRouterConfig  `mapstructure:"openrouter"`
	Spoonacular SpoonacularConfig `mapstructure:"spoonacular"`
	Unsplash    UnsplashConfig    `mapstructure:"unsplash"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Redis       RedisConfig       `mapstructure:"redis"`
	MongoDB     MongoDBConfig     `mapstructure:"mongodb"`
	SQLite      SQLiteConfig      `mapstructure:"sqlite"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Image       ImageConfig       `mapstructure:"image"`
	DedupWindow time.Duration     `mapstructure:"dedup_window"`
	Log         LogConfig         `mapstructure:"log"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// HTTPConfig 對外請求設定
type HTTPConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// RoboflowConfig 食材偵測供應商
type RoboflowConfig struct {
	APIKey     string  `mapstructure:"api_key"`
	BaseURL    string  `mapstructure:"base_url"`
	Model      string  `mapstructure:"model"`
	Version    string  `mapstructure:"version"`
	Confidence int     `mapstructure:"confidence"` // 伺服器端門檻（百分比）
	Overlap    int     `mapstructure:"overlap"`
	MinScore   float64 `mapstructure:"min_score"` // 用戶端門檻
}

// GeminiConfig 生成式 AI 供應商
type GeminiConfig struct {
	APIKey    string   `mapstructure:"api_key"`
	BaseURL   string   `mapstructure:"base_url"`
	Models    []string `mapstructure:"models"` // 營養估算依序嘗試
	TextModel string   `mapstructure:"text_model"`
	MaxTokens int      `mapstructure:"max_tokens"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// SpoonacularConfig 食譜搜尋供應商
type SpoonacularConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Number  int    `mapstructure:"number"`
}

// UnsplashConfig 圖片搜尋供應商
type UnsplashConfig struct {
	AccessKey string `mapstructure:"access_key"`
	BaseURL   string `mapstructure:"base_url"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // memory | redis
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MongoDBConfig 使用者食譜與餐點計畫儲存
type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// SQLiteConfig 本機瀏覽紀錄
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	MaxDimension int   `mapstructure:"max_dimension"` // 長邊像素上限
}

// LogConfig 日誌配置
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Address 監聽位址
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時直接使用環境變數
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定慣用的供應商環境變數
	bindings := map[string]string{
		"roboflow.api_key":     "ROBOFLOW_API_KEY",
		"roboflow.model":       "ROBOFLOW_MODEL",
		"roboflow.version":     "ROBOFLOW_VERSION",
		"gemini.api_key":       "GEMINI_API_KEY",
		"gemini.models":        "GEMINI_MODELS",
		"gemini.text_model":    "GEMINI_TEXT_MODEL",
		"openrouter.api_key":   "OPENROUTER_API_KEY",
		"openrouter.model":     "OPENROUTER_MODEL",
		"spoonacular.api_key":  "SPOONACULAR_API_KEY",
		"unsplash.access_key":  "UNSPLASH_ACCESS_KEY",
		"mongodb.uri":          "MONGODB_URI",
		"redis.addr":           "REDIS_ADDR",
		"cache.backend":        "CACHE_BACKEND",
		"rate_limit.enabled":   "RATE_LIMIT_ENABLED",
		"rate_limit.requests":  "RATE_LIMIT_REQUESTS",
		"rate_limit.window":    "RATE_LIMIT_WINDOW",
		"dedup_window":         "DEDUP_WINDOW",
		"log.level":            "LOG_LEVEL",
		"http.timeout":         "HTTP_TIMEOUT",
		"sqlite.path":          "SQLITE_PATH",
		"image.max_size_bytes": "IMAGE_MAX_SIZE_BYTES",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 環境變數中的模型清單為逗號分隔
	config.Gemini.Models = splitList(config.Gemini.Models)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-discovery")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 12<<20)

	// 對外請求統一 30 秒逾時
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.requests_per_second", 5)
	v.SetDefault("http.burst", 10)

	v.SetDefault("roboflow.base_url", "https://detect.roboflow.com")
	v.SetDefault("roboflow.confidence", 40)
	v.SetDefault("roboflow.overlap", 30)
	v.SetDefault("roboflow.min_score", 0.40)

	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.models", []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"})
	v.SetDefault("gemini.text_model", "gemini-2.0-flash")
	v.SetDefault("gemini.max_tokens", 2048)

	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "meta-llama/llama-3.3-70b-instruct:free")
	v.SetDefault("openrouter.max_tokens", 1000)

	v.SetDefault("spoonacular.base_url", "https://api.spoonacular.com")
	v.SetDefault("spoonacular.number", 10)

	v.SetDefault("unsplash.base_url", "https://api.unsplash.com")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("mongodb.database", "recipe_discovery")
	v.SetDefault("mongodb.max_pool_size", 50)
	v.SetDefault("mongodb.min_pool_size", 2)
	v.SetDefault("mongodb.connect_timeout", "10s")

	v.SetDefault("sqlite.path", "data/history.db")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("image.max_size_bytes", 10*1024*1024)
	v.SetDefault("image.max_dimension", 1200)

	v.SetDefault("dedup_window", "1s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/app.log")
}

// validateConfig 驗證設定，供應商憑證於呼叫時才檢查
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	if config.HTTP.Timeout <= 0 {
		return fmt.Errorf("invalid http timeout")
	}
	if config.HTTP.RequestsPerSecond <= 0 || config.HTTP.Burst <= 0 {
		return fmt.Errorf("invalid outbound rate limit")
	}
	if len(config.Gemini.Models) == 0 {
		return fmt.Errorf("gemini model list must not be empty")
	}
	if config.Roboflow.MinScore < 0 || config.Roboflow.MinScore > 1 {
		return fmt.Errorf("roboflow min score must be within [0,1]")
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory", "redis":
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize < 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL > 0 && config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}
	if config.Image.MaxSizeBytes <= 0 {
		return fmt.Errorf("invalid image max size")
	}

	return nil
}
