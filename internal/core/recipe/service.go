package recipe

import (
	"context"
	"strings"
	"time"

	"recipe-discovery/internal/core/vision"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

const createdPoolLimit = 200

var mealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// MatchSummary 比對結果與顯示分頁資訊
type MatchSummary struct {
	Ingredients []string             `json:"ingredients"`
	Results     []common.MatchResult `json:"results"`
	Visible     int                  `json:"visible"`
	More        int                  `json:"more"`
}

// SubstitutionSummary 替代建議與是否有無法替代的必要食材
type SubstitutionSummary struct {
	Recipe              string                      `json:"recipe"`
	Results             []common.SubstitutionResult `json:"results"`
	HasEssentialMissing bool                        `json:"has_essential_missing"`
}

// Service 食譜服務
type Service struct {
	searcher Searcher
	advisor  *Advisor
	recipes  RecipeStore
	plans    MealPlanStore
	history  HistoryStore
	number   int
}

// NewService 創建食譜服務；recipes / plans / history 可為 nil
func NewService(searcher Searcher, advisor *Advisor, recipes RecipeStore, plans MealPlanStore, history HistoryStore, number int) *Service {
	return &Service{
		searcher: searcher,
		advisor:  advisor,
		recipes:  recipes,
		plans:    plans,
		history:  history,
		number:   number,
	}
}

// Match 以自建食譜與外部搜尋結果組成候選池並比對
func (s *Service) Match(ctx context.Context, userID string, ingredients []string) (*MatchSummary, error) {
	names := vision.NormalizeAll(ingredients)
	if len(names) == 0 {
		return nil, common.InvalidInputError("at least one ingredient is required", nil)
	}

	created, err := s.createdPool(ctx, userID)
	if err != nil {
		return nil, err
	}

	fromAPI, err := s.searcher.ByIngredients(ctx, names, s.number)
	switch {
	case err == nil:
	case common.KindOf(err) == common.KindConfiguration && s.recipes != nil:
		// 外部搜尋未設定時只比對自建食譜
		common.LogWarn("Recipe search not configured, matching created recipes only",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		fromAPI = nil
	default:
		return nil, err
	}

	candidates := make([]common.RecipeCandidate, 0, len(created)+len(fromAPI))
	candidates = append(candidates, created...)
	candidates = append(candidates, fromAPI...)

	results := MatchRecipes(names, candidates)
	top, more := SplitTop(results, DefaultVisible)

	common.LogInfo("Recipes matched",
		zap.String("user_id", userID),
		zap.Int("ingredients", len(names)),
		zap.Int("created_candidates", len(created)),
		zap.Int("api_candidates", len(fromAPI)),
	)

	return &MatchSummary{
		Ingredients: names,
		Results:     results,
		Visible:     len(top),
		More:        more,
	}, nil
}

func (s *Service) createdPool(ctx context.Context, userID string) ([]common.RecipeCandidate, error) {
	if s.recipes == nil {
		return nil, nil
	}
	recipes, err := s.recipes.ListByUser(ctx, userID, createdPoolLimit)
	if err != nil {
		return nil, common.InternalError("failed to load created recipes", err)
	}

	pool := make([]common.RecipeCandidate, 0, len(recipes))
	for _, r := range recipes {
		pool = append(pool, common.RecipeCandidate{
			ID:                  r.ID,
			Title:               r.Title,
			Image:               r.Image,
			RequiredIngredients: vision.NormalizeAll(r.Ingredients),
			Source:              common.SourceCreated,
			Recipe:              r,
		})
	}
	return pool, nil
}

// Substitutions 分析缺少食材
func (s *Service) Substitutions(ctx context.Context, recipeName string, missing []string) (*SubstitutionSummary, error) {
	results, err := s.advisor.AnalyzeSubstitutions(ctx, recipeName, missing)
	if err != nil {
		return nil, err
	}
	return &SubstitutionSummary{
		Recipe:              recipeName,
		Results:             results,
		HasEssentialMissing: HasEssentialMissing(results),
	}, nil
}

// Random 隨機食譜
func (s *Service) Random(ctx context.Context, number int) ([]common.Recipe, error) {
	return s.searcher.Random(ctx, number)
}

// ByCuisine 依菜系搜尋
func (s *Service) ByCuisine(ctx context.Context, cuisine string, number int) ([]common.Recipe, error) {
	return s.searcher.ByCuisine(ctx, cuisine, number)
}

// Get 取得食譜並寫入瀏覽紀錄
func (s *Service) Get(ctx context.Context, userID, id string, source common.RecipeSource) (*common.Recipe, error) {
	var recipe *common.Recipe
	var err error

	switch source {
	case common.SourceCreated:
		if s.recipes == nil {
			return nil, common.ConfigurationError("recipe store is not configured")
		}
		recipe, err = s.recipes.GetByID(ctx, userID, id)
		if err != nil {
			return nil, common.InternalError("failed to load recipe", err)
		}
		if recipe == nil {
			return nil, common.NotFoundError("recipe not found")
		}
	default:
		recipe, err = s.searcher.ByID(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	s.recordView(ctx, userID, recipe)
	return recipe, nil
}

func (s *Service) recordView(ctx context.Context, userID string, recipe *common.Recipe) {
	if s.history == nil {
		return
	}
	view := &common.RecipeView{
		UserID:   userID,
		RecipeID: recipe.ID,
		Title:    recipe.Title,
		Image:    recipe.Image,
		Source:   recipe.Source,
		ViewedAt: time.Now().UTC(),
	}
	if err := s.history.RecordView(ctx, view); err != nil {
		common.LogWarn("Failed to record recipe view",
			zap.String("recipe_id", recipe.ID),
			zap.Error(err),
		)
	}
}

// History 瀏覽紀錄
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*common.RecipeView, error) {
	if s.history == nil {
		return []*common.RecipeView{}, nil
	}
	views, err := s.history.ListViews(ctx, userID, limit)
	if err != nil {
		return nil, common.InternalError("failed to load history", err)
	}
	return views, nil
}

// CreateRecipe 新增自建食譜
func (s *Service) CreateRecipe(ctx context.Context, userID string, recipe *common.Recipe) (*common.Recipe, error) {
	if s.recipes == nil {
		return nil, common.ConfigurationError("recipe store is not configured")
	}

	recipe.Title = strings.TrimSpace(recipe.Title)
	if recipe.Title == "" {
		return nil, common.InvalidInputError("recipe title is required", nil)
	}
	recipe.Ingredients = vision.NormalizeAll(recipe.Ingredients)
	if len(recipe.Ingredients) == 0 {
		return nil, common.InvalidInputError("recipe needs at least one ingredient", nil)
	}

	recipe.ID = common.GenerateUUID()
	recipe.UserID = userID
	recipe.Source = common.SourceCreated
	recipe.CreatedAt = time.Now().UTC()

	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, common.InternalError("failed to save recipe", err)
	}
	return recipe, nil
}

// ListCreated 使用者自建食譜
func (s *Service) ListCreated(ctx context.Context, userID string) ([]*common.Recipe, error) {
	if s.recipes == nil {
		return []*common.Recipe{}, nil
	}
	recipes, err := s.recipes.ListByUser(ctx, userID, createdPoolLimit)
	if err != nil {
		return nil, common.InternalError("failed to load created recipes", err)
	}
	return recipes, nil
}

// DeleteCreated 刪除自建食譜
func (s *Service) DeleteCreated(ctx context.Context, userID, id string) error {
	if s.recipes == nil {
		return common.ConfigurationError("recipe store is not configured")
	}
	return wrapStoreError(s.recipes.Delete(ctx, userID, id), "failed to delete recipe")
}

// PlanMeal 新增餐點計畫
func (s *Service) PlanMeal(ctx context.Context, userID string, plan *common.MealPlan) (*common.MealPlan, error) {
	if s.plans == nil {
		return nil, common.ConfigurationError("meal plan store is not configured")
	}

	if strings.TrimSpace(plan.RecipeID) == "" {
		return nil, common.InvalidInputError("recipe id is required", nil)
	}
	if _, err := time.Parse(time.DateOnly, plan.Date); err != nil {
		return nil, common.InvalidInputError("date must be YYYY-MM-DD", err)
	}
	plan.MealType = strings.ToLower(strings.TrimSpace(plan.MealType))
	if plan.MealType == "" {
		plan.MealType = "dinner"
	}
	if !mealTypes[plan.MealType] {
		return nil, common.InvalidInputError("unknown meal type", nil)
	}

	plan.ID = common.GenerateUUID()
	plan.UserID = userID
	plan.CreatedAt = time.Now().UTC()

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, common.InternalError("failed to save meal plan", err)
	}
	return plan, nil
}

// ListPlans 列出日期區間內的餐點計畫，from / to 可為空
func (s *Service) ListPlans(ctx context.Context, userID, from, to string) ([]*common.MealPlan, error) {
	if s.plans == nil {
		return []*common.MealPlan{}, nil
	}
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return nil, common.InvalidInputError("date must be YYYY-MM-DD", err)
		}
	}
	plans, err := s.plans.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, common.InternalError("failed to load meal plans", err)
	}
	return plans, nil
}

// DeletePlan 刪除餐點計畫
func (s *Service) DeletePlan(ctx context.Context, userID, id string) error {
	if s.plans == nil {
		return common.ConfigurationError("meal plan store is not configured")
	}
	return wrapStoreError(s.plans.Delete(ctx, userID, id), "failed to delete meal plan")
}

// wrapStoreError 保留儲存層已分類的錯誤（例如 NotFound）
func wrapStoreError(err error, message string) error {
	if err == nil {
		return nil
	}
	if common.KindOf(err) != common.KindInternal {
		return err
	}
	return common.InternalError(message, err)
}
