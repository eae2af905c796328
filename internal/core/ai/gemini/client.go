package gemini

import (
	"context"
	"net/url"
	"strings"
	"time"

	"recipe-discovery/internal/core/ai/provider"
	"recipe-discovery/internal/core/httpclient"
	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"
)

const providerName = "gemini"

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Client Gemini generateContent REST 客戶端
type Client struct {
	cfg    config.GeminiConfig
	client *httpclient.Client
}

// NewClient 創建 Gemini 客戶端
func NewClient(cfg config.GeminiConfig, client *httpclient.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// Name 實作 provider.Provider
func (c *Client) Name() string {
	return providerName
}

// Generate 呼叫 models/{model}:generateContent
func (c *Client) Generate(ctx context.Context, req *provider.Request) (string, error) {
	if c.cfg.APIKey == "" {
		return "", common.ConfigurationError("generative AI API key is not configured").WithProvider(providerName)
	}

	model := req.Model
	if model == "" {
		model = c.cfg.TextModel
	}
	if model == "" {
		return "", common.ConfigurationError("no generative AI model configured").WithProvider(providerName)
	}

	body := buildRequest(req, c.cfg.MaxTokens)

	r, err := c.client.R(ctx)
	if err != nil {
		return "", err
	}
	r.SetQueryParam("key", c.cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body)

	start := time.Now()
	resp, err := c.client.Post(r, "/v1beta/models/"+url.PathEscape(model)+":generateContent")
	common.LogAICall(providerName, model, time.Since(start), err)
	if err != nil {
		return "", err
	}

	var result generateResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", common.ParseError("invalid generateContent response", err).WithProvider(providerName)
	}
	if result.PromptFeedback.BlockReason != "" {
		return "", common.ParseError("prompt blocked: "+result.PromptFeedback.BlockReason, nil).WithProvider(providerName)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", common.ParseError("no candidates in response", nil).WithProvider(providerName)
	}

	var text strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", common.ParseError("empty candidate text", nil).WithProvider(providerName)
	}
	return text.String(), nil
}

func buildRequest(req *provider.Request, defaultMaxTokens int) *generateRequest {
	out := &generateRequest{}

	for _, m := range req.History {
		role := "user"
		if m.Role == provider.RoleAssistant {
			role = "model"
		}
		out.Contents = append(out.Contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}

	parts := []part{{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: req.Image.MimeType,
			Data:     req.Image.Data,
		}})
	}
	out.Contents = append(out.Contents, content{Role: "user", Parts: parts})

	if req.System != "" {
		out.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	if maxTokens > 0 || req.Temperature > 0 {
		out.GenerationConfig = &generationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     req.Temperature,
		}
	}
	return out
}
