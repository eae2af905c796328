package openrouter

import (
	"context"
	"strings"
	"time"

	"recipe-discovery/internal/core/ai/provider"
	"recipe-discovery/internal/core/httpclient"
	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"
)

const providerName = "openrouter"

type imageURL struct {
	URL string `json:"url"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string 或 []contentPart
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client OpenRouter chat completions 客戶端
type Client struct {
	cfg    config.OpenRouterConfig
	client *httpclient.Client
}

// NewClient 創建 OpenRouter 客戶端
func NewClient(cfg config.OpenRouterConfig, client *httpclient.Client) *Client {
	client.SetHeader("HTTP-Referer", "https://recipe-discovery.app").
		SetHeader("X-Title", "Recipe Discovery")
	return &Client{cfg: cfg, client: client}
}

// Name 實作 provider.Provider
func (c *Client) Name() string {
	return providerName
}

// Generate 發送 chat completion
func (c *Client) Generate(ctx context.Context, req *provider.Request) (string, error) {
	if c.cfg.APIKey == "" {
		return "", common.ConfigurationError("chat API key is not configured").WithProvider(providerName)
	}

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}

	body := chatRequest{
		Model:       model,
		Messages:    buildMessages(req),
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	r, err := c.client.R(ctx)
	if err != nil {
		return "", err
	}
	r.SetAuthToken(c.cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	start := time.Now()
	resp, err := c.client.Post(r, "/chat/completions")
	common.LogAICall(providerName, model, time.Since(start), err)
	if err != nil {
		return "", err
	}

	var result chatResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", common.ParseError("invalid chat completion response", err).WithProvider(providerName)
	}
	if len(result.Choices) == 0 {
		return "", common.ParseError("no choices in response", nil).WithProvider(providerName)
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", common.ParseError("empty completion", nil).WithProvider(providerName)
	}
	return content, nil
}

func buildMessages(req *provider.Request) []chatMessage {
	messages := make([]chatMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.History {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	if req.Image == nil {
		messages = append(messages, chatMessage{Role: provider.RoleUser, Content: req.Prompt})
		return messages
	}

	messages = append(messages, chatMessage{
		Role: provider.RoleUser,
		Content: []contentPart{
			{Type: "text", Text: req.Prompt},
			{Type: "image_url", ImageURL: &imageURL{URL: req.Image.DataURI()}},
		},
	})
	return messages
}
