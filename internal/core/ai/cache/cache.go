package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

// Cache 以字串鍵值儲存查詢結果，未命中時回傳 common.ErrCacheMiss
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// New 依設定選擇快取後端；停用時回傳 nil
func New(cfg *config.Config) (Cache, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch cfg.Cache.Backend {
	case "redis":
		svc, err := NewRedisCache(cfg.Redis, cfg.Cache)
		if err != nil {
			return nil, err
		}
		common.LogInfo("Redis cache connected",
			zap.String("addr", cfg.Redis.Addr),
			zap.Duration("ttl", cfg.Cache.TTL),
		)
		return svc, nil
	default:
		return NewManager(cfg.Cache), nil
	}
}

// Key 由多段內容產生固定長度的快取鍵
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// NormalizeQuery 查詢字串正規化（小寫、合併空白）
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
