package httpclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout 未設定時的對外請求逾時
const DefaultTimeout = 30 * time.Second

// Options 客戶端設定
type Options struct {
	Provider          string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// OptionsFrom 由全域 HTTP 設定建立供應商選項
func OptionsFrom(cfg config.HTTPConfig, provider, baseURL string) Options {
	return Options{
		Provider:          provider,
		BaseURL:           baseURL,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}
}

// Client 對外 HTTP 客戶端，包含逾時、限流與錯誤分類
type Client struct {
	provider string
	resty    *resty.Client
	limiter  *rate.Limiter
}

// New 創建客戶端
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	r := resty.New().SetTimeout(timeout)
	if opts.BaseURL != "" {
		r.SetBaseURL(opts.BaseURL)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		provider: opts.Provider,
		resty:    r,
		limiter:  limiter,
	}
}

// Provider 供應商名稱
func (c *Client) Provider() string {
	return c.provider
}

// SetHeader 設定每個請求共用的標頭
func (c *Client) SetHeader(key, value string) *Client {
	c.resty.SetHeader(key, value)
	return c
}

// R 建立綁定 context 的請求，會先等待限流
func (c *Client) R(ctx context.Context) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.transportError(err)
	}
	return c.resty.R().SetContext(ctx), nil
}

// Do 執行請求並分類錯誤，成功時回傳響應
func (c *Client) Do(req *resty.Request, method, url string) (*resty.Response, error) {
	start := time.Now()
	resp, err := req.Execute(method, url)
	if err != nil {
		common.LogWarn("Provider request failed",
			zap.String("provider", c.provider),
			zap.String("method", method),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, c.transportError(err)
	}

	common.LogDebug("Provider request completed",
		zap.String("provider", c.provider),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return resp, common.FromHTTPStatus(c.provider, resp.StatusCode(), resp.String())
	}
	return resp, nil
}

// Get 發送 GET
func (c *Client) Get(req *resty.Request, url string) (*resty.Response, error) {
	return c.Do(req, http.MethodGet, url)
}

// Post 發送 POST
func (c *Client) Post(req *resty.Request, url string) (*resty.Response, error) {
	return c.Do(req, http.MethodPost, url)
}

func (c *Client) transportError(err error) error {
	message := "no response from provider"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		message = "provider request timed out"
	case errors.Is(err, context.Canceled):
		message = "provider request cancelled"
	}
	return common.NetworkError(message, err).WithProvider(c.provider)
}
