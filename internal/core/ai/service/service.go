package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"recipe-discovery/internal/core/ai/cache"
	"recipe-discovery/internal/core/ai/provider"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 在供應商外加上回應快取，本身也是 provider.Provider
type Service struct {
	provider provider.Provider
	cache    cache.Cache
}

// NewService 創建 AI 服務；cache 可為 nil
func NewService(p provider.Provider, c cache.Cache) *Service {
	return &Service{
		provider: p,
		cache:    c,
	}
}

// Name 實作 provider.Provider
func (s *Service) Name() string {
	return s.provider.Name()
}

// Generate 先查快取，未命中才呼叫供應商；
// 只有成功且通過 req.Accept 檢查的回應會寫入快取，未通過的回應照常回傳給呼叫端
func (s *Service) Generate(ctx context.Context, req *provider.Request) (string, error) {
	r := *req
	r.Prompt = strings.TrimSpace(r.Prompt)
	if r.Prompt == "" {
		return "", common.InvalidInputError("prompt is empty", nil)
	}

	req = &r

	key := s.cacheKey(req)
	if s.cache != nil {
		val, err := s.cache.Get(ctx, key)
		switch {
		case err == nil && val != "":
			common.LogCacheHit("ai_response")
			return val, nil
		case err != nil && !errors.Is(err, common.ErrCacheMiss):
			common.LogWarn("Cache lookup failed", zap.Error(err))
		default:
			common.LogCacheMiss("ai_response")
		}
	}

	content, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	if s.cache == nil {
		return content, nil
	}
	if req.Accept != nil {
		if err := req.Accept(content); err != nil {
			common.LogWarn("Reply rejected, not cached",
				zap.String("provider", s.provider.Name()),
				zap.String("model", req.Model),
				zap.Error(err),
			)
			return content, nil
		}
	}
	if err := s.cache.Set(ctx, key, content); err != nil {
		common.LogWarn("Cache store failed", zap.Error(err))
	}
	return content, nil
}

func (s *Service) cacheKey(req *provider.Request) string {
	history, _ := json.Marshal(req.History)
	image := ""
	if req.Image != nil {
		image = req.Image.Data
	}
	return cache.Key("ai", s.provider.Name(), req.Model, req.System, req.Prompt, string(history), image)
}
