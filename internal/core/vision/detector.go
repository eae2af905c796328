package vision

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"recipe-discovery/internal/core/httpclient"
	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

const providerName = "roboflow"

// DefaultMinScore 用戶端信心門檻，與伺服器端門檻並存
const DefaultMinScore = 0.40

// ImageEncoder 將圖片來源轉為 base64
type ImageEncoder interface {
	Encode(ctx context.Context, source string) (*common.EncodedImage, error)
}

// prediction 偵測供應商的單筆預測
type prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

type detectResponse struct {
	Predictions []prediction `json:"predictions"`
	Image       struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"image"`
	Time float64 `json:"time"`
}

// Detector 食材偵測
type Detector struct {
	cfg    config.RoboflowConfig
	client *httpclient.Client
	images ImageEncoder
}

// NewDetector 創建食材偵測服務
func NewDetector(cfg config.RoboflowConfig, client *httpclient.Client, images ImageEncoder) *Detector {
	if cfg.MinScore <= 0 {
		cfg.MinScore = DefaultMinScore
	}
	return &Detector{
		cfg:    cfg,
		client: client,
		images: images,
	}
}

// DetectIngredients 偵測圖片中的食材，回傳正規化且去重的名稱；沒有偵測到時回傳空切片
func (d *Detector) DetectIngredients(ctx context.Context, source string) ([]string, error) {
	if err := d.checkConfig(); err != nil {
		return nil, err
	}

	img, err := d.images.Encode(ctx, source)
	if err != nil {
		return nil, err
	}

	detections, err := d.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	ingredients := Ingredients(detections, d.cfg.MinScore)
	common.LogInfo("Ingredients detected",
		zap.Int("detections", len(detections)),
		zap.Int("ingredients", len(ingredients)),
		zap.Strings("names", ingredients),
	)
	return ingredients, nil
}

// Detect 呼叫偵測供應商並回傳原始偵測結果
func (d *Detector) Detect(ctx context.Context, img *common.EncodedImage) ([]common.DetectedIngredient, error) {
	if err := d.checkConfig(); err != nil {
		return nil, err
	}

	req, err := d.client.R(ctx)
	if err != nil {
		return nil, err
	}
	req.SetQueryParams(map[string]string{
		"api_key":    d.cfg.APIKey,
		"confidence": strconv.Itoa(d.cfg.Confidence),
		"overlap":    strconv.Itoa(d.cfg.Overlap),
	}).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(img.Data)

	start := time.Now()
	resp, err := d.client.Post(req, "/"+url.PathEscape(d.cfg.Model)+"/"+url.PathEscape(d.cfg.Version))
	if err != nil {
		common.LogWarn("Ingredient detection failed",
			zap.String("kind", string(common.KindOf(err))),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	var result detectResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.ParseError("invalid detection response", err).WithProvider(providerName)
	}

	detections := make([]common.DetectedIngredient, 0, len(result.Predictions))
	for _, p := range result.Predictions {
		detections = append(detections, common.DetectedIngredient{
			Label:      p.Class,
			Confidence: p.Confidence,
			BoundingBox: common.BoundingBox{
				X:      p.X,
				Y:      p.Y,
				Width:  p.Width,
				Height: p.Height,
			},
		})
	}

	common.LogDebug("Detection response parsed",
		zap.Int("predictions", len(detections)),
		zap.Float64("provider_time", result.Time),
		zap.Duration("latency", time.Since(start)),
	)
	return detections, nil
}

func (d *Detector) checkConfig() error {
	if d.cfg.APIKey == "" {
		return common.ConfigurationError("detection API key is not configured").WithProvider(providerName)
	}
	if d.cfg.Model == "" || d.cfg.Version == "" {
		return common.ConfigurationError("detection model id or version is not configured").WithProvider(providerName)
	}
	return nil
}

// Ingredients 以信心門檻過濾（嚴格大於 minScore），再正規化並去重
func Ingredients(detections []common.DetectedIngredient, minScore float64) []string {
	labels := make([]string, 0, len(detections))
	for _, det := range detections {
		if det.Confidence <= minScore {
			continue
		}
		labels = append(labels, det.Label)
	}
	return NormalizeAll(labels)
}
