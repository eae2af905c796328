package provider

import (
	"context"

	"recipe-discovery/internal/pkg/common"
)

// 對話角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 表示與 AI 模型的對話消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示發送到 AI 提供者的請求
type Request struct {
	Model       string               `json:"model,omitempty"` // 空字串使用供應商預設模型
	System      string               `json:"system,omitempty"`
	Prompt      string               `json:"prompt"`
	Image       *common.EncodedImage `json:"-"`
	History     []Message            `json:"history,omitempty"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Temperature float64              `json:"temperature,omitempty"`

	// Accept 非 nil 時，回應需通過檢查才會寫入快取
	Accept func(reply string) error `json:"-"`
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Name 供應商名稱，用於日誌與快取鍵
	Name() string

	// Generate 生成回應文字
	Generate(ctx context.Context, req *Request) (string, error)
}
