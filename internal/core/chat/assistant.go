package chat

import (
	"context"
	"strings"

	"recipe-discovery/internal/core/ai/provider"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

const maxHistory = 20

const systemPrompt = `You are a friendly cooking assistant. Answer questions about recipes, ingredients, techniques and nutrition.
Keep answers short and practical.
Respond with ONLY a JSON object, no markdown fences:
{"reply": "your answer", "dish": "name of the single dish your answer is about, or empty string"}`

// Reply 助理回覆
type Reply struct {
	Text     string `json:"reply"`
	Dish     string `json:"dish,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type replyPayload struct {
	Reply string `json:"reply"`
	Dish  string `json:"dish"`
}

// ImageFinder 依菜名找圖片
type ImageFinder interface {
	Find(ctx context.Context, query string) (string, error)
}

// Assistant 烹飪助理
type Assistant struct {
	generator provider.Provider
	images    ImageFinder
	model     string
}

// NewAssistant 創建助理；images 可為 nil
func NewAssistant(generator provider.Provider, images ImageFinder, model string) *Assistant {
	return &Assistant{generator: generator, images: images, model: model}
}

// Ask 回答問題，回覆提到菜名時附上圖片
func (a *Assistant) Ask(ctx context.Context, history []provider.Message, question string) (*Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, common.InvalidInputError("question is empty", nil)
	}

	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	raw, err := a.generator.Generate(ctx, &provider.Request{
		Model:       a.model,
		System:      systemPrompt,
		Prompt:      question,
		History:     history,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	reply := ParseReply(raw)
	if reply.Dish != "" && a.images != nil {
		imageURL, err := a.images.Find(ctx, reply.Dish)
		if err != nil {
			common.LogWarn("Dish image lookup failed",
				zap.String("dish", reply.Dish),
				zap.Error(err),
			)
		} else {
			reply.ImageURL = imageURL
		}
	}
	return reply, nil
}

// ParseReply 解析 {"reply","dish"}；非 JSON 輸出整段視為回覆文字
func ParseReply(raw string) *Reply {
	text := strings.TrimSpace(common.StripCodeFences(raw))

	if body, ok := common.ExtractJSONObject(text); ok {
		var payload replyPayload
		if err := common.ParseJSON(body, &payload); err == nil && strings.TrimSpace(payload.Reply) != "" {
			return &Reply{
				Text: strings.TrimSpace(payload.Reply),
				Dish: strings.TrimSpace(payload.Dish),
			}
		}
	}
	return &Reply{Text: text}
}
