package recipe

import (
	"context"
	"fmt"
	"strings"

	"recipe-discovery/internal/core/ai/provider"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

const substitutionPrompt = `I want to cook "%s" but I am missing these ingredients: %s.
For each missing ingredient decide whether it is essential to the dish and suggest practical substitutes.
Respond with ONLY a JSON array, no markdown fences and no extra text, one object per missing ingredient:
[{"ingredient": "name", "isEssential": true, "substitutions": ["substitute 1", "substitute 2"], "impact": "how the dish changes"}]
Use an empty substitutions array when nothing can replace the ingredient.`

type substitutionItem struct {
	Ingredient    string   `json:"ingredient"`
	IsEssential   *bool    `json:"isEssential"`
	Substitutions []string `json:"substitutions"`
	Impact        string   `json:"impact"`
}

// Advisor 以一次 AI 呼叫分析所有缺少食材的替代品
type Advisor struct {
	generator provider.Provider
	model     string
}

// NewAdvisor 創建替代建議服務；model 為空時使用供應商預設模型
func NewAdvisor(generator provider.Provider, model string) *Advisor {
	return &Advisor{generator: generator, model: model}
}

// AnalyzeSubstitutions 缺少食材為空時直接回傳空結果，不呼叫供應商
func (a *Advisor) AnalyzeSubstitutions(ctx context.Context, recipeName string, missing []string) ([]common.SubstitutionResult, error) {
	names := make([]string, 0, len(missing))
	for _, m := range missing {
		if m = strings.TrimSpace(m); m != "" {
			names = append(names, m)
		}
	}
	if len(names) == 0 {
		return []common.SubstitutionResult{}, nil
	}

	raw, err := a.generator.Generate(ctx, &provider.Request{
		Model:       a.model,
		Prompt:      fmt.Sprintf(substitutionPrompt, strings.TrimSpace(recipeName), strings.Join(names, ", ")),
		Temperature: 0.2,
		Accept:      acceptSubstitutions,
	})
	if err != nil {
		return nil, err
	}

	results, err := ParseSubstitutions(raw)
	if err != nil {
		return nil, err
	}

	common.LogInfo("Substitutions analyzed",
		zap.String("recipe", recipeName),
		zap.Int("missing", len(names)),
		zap.Int("results", len(results)),
		zap.Bool("essential_missing", HasEssentialMissing(results)),
	)
	return results, nil
}

func acceptSubstitutions(reply string) error {
	_, err := ParseSubstitutions(reply)
	return err
}

// ParseSubstitutions 解析替代建議陣列，每筆都必須有食材名稱與 isEssential
func ParseSubstitutions(raw string) ([]common.SubstitutionResult, error) {
	body, ok := common.ExtractJSONArray(raw)
	if !ok {
		return nil, common.ParseError("response contains no JSON array", nil)
	}

	var items []substitutionItem
	if err := common.ParseJSON(body, &items); err != nil {
		return nil, common.ParseError("response is not a valid substitution list", err)
	}

	results := make([]common.SubstitutionResult, 0, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.Ingredient)
		if name == "" {
			return nil, common.ParseError(fmt.Sprintf("item %d has no ingredient", i), nil)
		}
		if item.IsEssential == nil {
			return nil, common.ParseError(fmt.Sprintf("item %q has no isEssential flag", name), nil)
		}

		subs := make([]string, 0, len(item.Substitutions))
		for _, s := range item.Substitutions {
			if s = strings.TrimSpace(s); s != "" {
				subs = append(subs, s)
			}
		}
		results = append(results, common.SubstitutionResult{
			Ingredient:    name,
			IsEssential:   *item.IsEssential,
			Substitutions: subs,
			Impact:        strings.TrimSpace(item.Impact),
		})
	}
	return results, nil
}

// HasEssentialMissing 至少一個必要食材沒有替代品
func HasEssentialMissing(results []common.SubstitutionResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}
