package search

import (
	"context"
	"errors"
	"strings"

	"recipe-discovery/internal/core/ai/cache"
	"recipe-discovery/internal/core/httpclient"
	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

const imageProvider = "unsplash"

type randomPhoto struct {
	ID   string `json:"id"`
	URLs struct {
		Regular string `json:"regular"`
		Small   string `json:"small"`
	} `json:"urls"`
}

// UnsplashClient 圖片搜尋供應商
type UnsplashClient struct {
	cfg    config.UnsplashConfig
	client *httpclient.Client
}

// NewUnsplashClient 創建圖片搜尋客戶端
func NewUnsplashClient(cfg config.UnsplashConfig, client *httpclient.Client) *UnsplashClient {
	return &UnsplashClient{cfg: cfg, client: client}
}

// RandomPhoto 依關鍵字取得一張隨機圖片，優先回傳 regular 尺寸
func (c *UnsplashClient) RandomPhoto(ctx context.Context, query string) (string, error) {
	if c.cfg.AccessKey == "" {
		return "", common.ConfigurationError("image search client id is not configured").WithProvider(imageProvider)
	}

	req, err := c.client.R(ctx)
	if err != nil {
		return "", err
	}
	req.SetQueryParams(map[string]string{
		"query":     query,
		"client_id": c.cfg.AccessKey,
	})

	resp, err := c.client.Get(req, "/photos/random")
	if err != nil {
		return "", err
	}

	var photo randomPhoto
	if err := common.ParseJSONBytes(resp.Body(), &photo); err != nil {
		return "", common.ParseError("invalid photo response", err).WithProvider(imageProvider)
	}
	switch {
	case photo.URLs.Regular != "":
		return photo.URLs.Regular, nil
	case photo.URLs.Small != "":
		return photo.URLs.Small, nil
	default:
		return "", common.ParseError("photo response has no usable url", nil).WithProvider(imageProvider)
	}
}

// PhotoFinder 依關鍵字找圖片網址
type PhotoFinder interface {
	RandomPhoto(ctx context.Context, query string) (string, error)
}

// ImageLookup 圖片查詢輔助，同一查詢在行程內只呼叫供應商一次
type ImageLookup struct {
	finder PhotoFinder
	cache  cache.Cache
}

// NewImageLookup 創建圖片查詢；cache 為 nil 時使用短暫快取
func NewImageLookup(finder PhotoFinder, c cache.Cache) *ImageLookup {
	if c == nil {
		c = cache.NewEphemeral()
	}
	return &ImageLookup{finder: finder, cache: c}
}

// Find 取得查詢對應的圖片網址
func (l *ImageLookup) Find(ctx context.Context, query string) (string, error) {
	q := cache.NormalizeQuery(query)
	if q == "" {
		return "", common.InvalidInputError("image query is empty", nil)
	}
	key := "image:" + q

	if val, err := l.cache.Get(ctx, key); err == nil && val != "" {
		common.LogCacheHit("image_lookup")
		return val, nil
	} else if err != nil && !errors.Is(err, common.ErrCacheMiss) {
		common.LogWarn("Image cache lookup failed", zap.Error(err))
	}
	common.LogCacheMiss("image_lookup")

	imageURL, err := l.finder.RandomPhoto(ctx, q)
	if err != nil {
		return "", err
	}
	imageURL = strings.TrimSpace(imageURL)

	if err := l.cache.Set(ctx, key, imageURL); err != nil {
		common.LogWarn("Image cache store failed", zap.Error(err))
	}
	return imageURL, nil
}
