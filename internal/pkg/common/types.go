package common

import "time"

// EncodedImage 可直接傳輸的圖片（base64）
type EncodedImage struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"-"` // base64，不含 data URI 前綴
	Size     int    `json:"size"`
}

// DataURI 轉為 data URI
func (i *EncodedImage) DataURI() string {
	return "data:" + i.MimeType + ";base64," + i.Data
}

// BoundingBox 偵測框（像素）
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DetectedIngredient 單一原始偵測結果
type DetectedIngredient struct {
	Label       string      `json:"label"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

// Confidence 營養估算信心程度
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid 檢查信心程度是否合法
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// NutritionFacts 營養估算結果，數值為含單位的可讀字串
type NutritionFacts struct {
	FoodName      string     `json:"foodName"`
	ServingSize   string     `json:"servingSize"`
	Calories      string     `json:"calories"`
	Protein       string     `json:"protein"`
	Carbohydrates string     `json:"carbohydrates"`
	Fat           string     `json:"fat"`
	Fiber         string     `json:"fiber"`
	Sugar         string     `json:"sugar"`
	Sodium        string     `json:"sodium"`
	Cholesterol   string     `json:"cholesterol,omitempty"`
	SaturatedFat  string     `json:"saturatedFat,omitempty"`
	TransFat      string     `json:"transFat,omitempty"`
	Confidence    Confidence `json:"confidence"`
	Model         string     `json:"model,omitempty"` // 產生結果的模型
}

// RecipeSource 食譜來源
type RecipeSource string

const (
	SourceCreated RecipeSource = "created"
	SourceAPI     RecipeSource = "api"
)

// Recipe 食譜
type Recipe struct {
	ID           string       `json:"id" bson:"_id"`
	UserID       string       `json:"user_id,omitempty" bson:"user_id"`
	Title        string       `json:"title" bson:"title"`
	Image        string       `json:"image,omitempty" bson:"image"`
	Ingredients  []string     `json:"ingredients" bson:"ingredients"`
	Instructions string       `json:"instructions,omitempty" bson:"instructions"`
	Cuisine      string       `json:"cuisine,omitempty" bson:"cuisine"`
	ReadyMinutes int          `json:"ready_minutes,omitempty" bson:"ready_minutes"`
	Servings     int          `json:"servings,omitempty" bson:"servings"`
	SourceURL    string       `json:"source_url,omitempty" bson:"source_url"`
	Source       RecipeSource `json:"source" bson:"source"`
	CreatedAt    time.Time    `json:"created_at,omitempty" bson:"created_at"`
}

// RecipeCandidate 參與比對的候選食譜
type RecipeCandidate struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Image               string       `json:"image"`
	RequiredIngredients []string     `json:"required_ingredients"`
	Source              RecipeSource `json:"source"`
	Recipe              *Recipe      `json:"-"`
}

// MatchResult 比對結果
type MatchResult struct {
	RecipeName      string           `json:"recipe_name"`
	Matched         []string         `json:"matched"`
	Missing         []string         `json:"missing"`
	MatchPercentage int              `json:"match_percentage"`
	Source          RecipeSource     `json:"source"`
	RecipeData      *RecipeCandidate `json:"recipe"`
}

// SubstitutionResult 缺少食材的替代建議
type SubstitutionResult struct {
	Ingredient    string   `json:"ingredient"`
	IsEssential   bool     `json:"isEssential"`
	Substitutions []string `json:"substitutions"`
	Impact        string   `json:"impact,omitempty"`
}

// IsCritical 必要食材且沒有替代品
func (s SubstitutionResult) IsCritical() bool {
	return s.IsEssential && len(s.Substitutions) == 0
}

// MealPlan 餐點計畫
type MealPlan struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	RecipeID    string    `json:"recipe_id" bson:"recipe_id"`
	RecipeTitle string    `json:"recipe_title" bson:"recipe_title"`
	Date        string    `json:"date" bson:"date"` // YYYY-MM-DD
	MealType    string    `json:"meal_type" bson:"meal_type"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// RecipeView 瀏覽紀錄
type RecipeView struct {
	UserID   string       `json:"user_id"`
	RecipeID string       `json:"recipe_id"`
	Title    string       `json:"title"`
	Image    string       `json:"image,omitempty"`
	Source   RecipeSource `json:"source"`
	ViewedAt time.Time    `json:"viewed_at"`
}

// NutritionEntry 營養估算紀錄
type NutritionEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Facts     NutritionFacts `json:"facts"`
	CreatedAt time.Time      `json:"created_at"`
}
