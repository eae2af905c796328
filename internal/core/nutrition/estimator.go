package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"recipe-discovery/internal/core/ai/provider"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

// fallbackMessage 沒有任何失敗原因可用時的訊息
const fallbackMessage = "failed to analyze nutrition"

// ImageEncoder 將圖片來源轉為 base64
type ImageEncoder interface {
	Encode(ctx context.Context, source string) (*common.EncodedImage, error)
}

// Attempt 單一模型的嘗試結果
type Attempt struct {
	Model string
	Err   error
}

// Estimator 依序嘗試模型清單估算營養，第一個通過驗證的結果勝出
type Estimator struct {
	generator provider.Provider
	images    ImageEncoder
	models    []string
}

// NewEstimator 創建營養估算服務，models 的順序即嘗試順序
func NewEstimator(generator provider.Provider, images ImageEncoder, models []string) *Estimator {
	return &Estimator{
		generator: generator,
		images:    images,
		models:    append([]string(nil), models...),
	}
}

// Models 嘗試順序
func (e *Estimator) Models() []string {
	return append([]string(nil), e.models...)
}

// EstimateNutrition 讀取圖片來源並估算營養
func (e *Estimator) EstimateNutrition(ctx context.Context, source string) (*common.NutritionFacts, error) {
	img, err := e.images.Encode(ctx, source)
	if err != nil {
		return nil, err
	}
	return e.EstimateImage(ctx, img)
}

// EstimateImage 對已編碼圖片執行模型串接
//
// 每個模型只嘗試一次且依序進行；前一個失敗後才會嘗試下一個。
func (e *Estimator) EstimateImage(ctx context.Context, img *common.EncodedImage) (*common.NutritionFacts, error) {
	attempts := make([]Attempt, 0, len(e.models))

	for _, model := range e.models {
		if err := ctx.Err(); err != nil {
			return nil, common.NetworkError("nutrition estimation cancelled", err)
		}

		facts, err := e.try(ctx, model, img)
		if err == nil {
			facts.Model = model
			common.LogInfo("Nutrition estimated",
				zap.String("model", model),
				zap.Int("attempt", len(attempts)+1),
				zap.String("food", facts.FoodName),
				zap.String("confidence", string(facts.Confidence)),
			)
			return facts, nil
		}

		attempts = append(attempts, Attempt{Model: model, Err: err})
		common.LogWarn("Model attempt failed, trying next",
			zap.String("model", model),
			zap.String("kind", string(common.KindOf(err))),
			zap.Error(err),
		)
	}

	return nil, exhausted(attempts)
}

func (e *Estimator) try(ctx context.Context, model string, img *common.EncodedImage) (*common.NutritionFacts, error) {
	raw, err := e.generator.Generate(ctx, &provider.Request{
		Model:  model,
		Prompt: estimatePrompt,
		Image:  img,
		Accept: acceptFacts,
	})
	if err != nil {
		return nil, err
	}
	return ParseFacts(raw)
}

func acceptFacts(reply string) error {
	_, err := ParseFacts(reply)
	return err
}

// exhausted 組合串接失敗錯誤，訊息取自最後一次失敗
func exhausted(attempts []Attempt) error {
	if len(attempts) == 0 {
		return common.NewError(common.KindExhaustedFallback, fallbackMessage, nil)
	}

	models := make([]string, len(attempts))
	for i, a := range attempts {
		models[i] = a.Model
	}
	common.LogError("All nutrition models failed", zap.Strings("models", models))

	last := attempts[len(attempts)-1].Err
	return common.NewError(common.KindExhaustedFallback,
		fmt.Sprintf("all %d models failed, last error", len(attempts)), last)
}

var requiredFields = []string{
	"foodName", "servingSize", "calories", "protein", "carbohydrates",
	"fat", "fiber", "sugar", "sodium",
}

// 數值沒有單位時補上
var defaultUnits = map[string]string{
	"calories":      "kcal",
	"protein":       "g",
	"carbohydrates": "g",
	"fat":           "g",
	"fiber":         "g",
	"sugar":         "g",
	"sodium":        "mg",
	"cholesterol":   "mg",
	"saturatedFat":  "g",
	"transFat":      "g",
}

// ParseFacts 移除程式碼區塊標記、取出 JSON 物件並驗證欄位
func ParseFacts(raw string) (*common.NutritionFacts, error) {
	body, ok := common.ExtractJSONObject(raw)
	if !ok {
		return nil, common.ParseError("response contains no JSON object", nil)
	}

	var fields map[string]interface{}
	if err := common.ParseJSON(body, &fields); err != nil {
		return nil, common.ParseError("response is not valid JSON", err)
	}

	values := make(map[string]string, len(fields))
	for key, v := range fields {
		s, ok := stringValue(key, v)
		if ok {
			values[key] = s
		}
	}

	for _, key := range requiredFields {
		if values[key] == "" {
			return nil, common.ParseError(fmt.Sprintf("missing field %q", key), nil)
		}
	}

	confidence := common.Confidence(strings.ToLower(values["confidence"]))
	if !confidence.Valid() {
		return nil, common.ParseError(fmt.Sprintf("invalid confidence %q", values["confidence"]), nil)
	}

	return &common.NutritionFacts{
		FoodName:      values["foodName"],
		ServingSize:   values["servingSize"],
		Calories:      values["calories"],
		Protein:       values["protein"],
		Carbohydrates: values["carbohydrates"],
		Fat:           values["fat"],
		Fiber:         values["fiber"],
		Sugar:         values["sugar"],
		Sodium:        values["sodium"],
		Cholesterol:   values["cholesterol"],
		SaturatedFat:  values["saturatedFat"],
		TransFat:      values["transFat"],
		Confidence:    confidence,
	}, nil
}

func stringValue(key string, v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		if unit := defaultUnits[key]; unit != "" {
			return t.String() + " " + unit, true
		}
		return t.String(), true
	default:
		return "", false
	}
}
