package recipe

import (
	"context"

	"recipe-discovery/internal/pkg/common"
)

// RecipeStore 使用者自建食譜
type RecipeStore interface {
	Create(ctx context.Context, recipe *common.Recipe) error
	GetByID(ctx context.Context, userID, id string) (*common.Recipe, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*common.Recipe, error)
	Delete(ctx context.Context, userID, id string) error
}

// MealPlanStore 餐點計畫
type MealPlanStore interface {
	Create(ctx context.Context, plan *common.MealPlan) error
	ListByUser(ctx context.Context, userID, from, to string) ([]*common.MealPlan, error)
	Delete(ctx context.Context, userID, id string) error
}

// HistoryStore 瀏覽紀錄
type HistoryStore interface {
	RecordView(ctx context.Context, view *common.RecipeView) error
	ListViews(ctx context.Context, userID string, limit int) ([]*common.RecipeView, error)
}

// Searcher 外部食譜搜尋
type Searcher interface {
	Random(ctx context.Context, number int) ([]common.Recipe, error)
	ByCuisine(ctx context.Context, cuisine string, number int) ([]common.Recipe, error)
	ByIngredients(ctx context.Context, ingredients []string, number int) ([]common.RecipeCandidate, error)
	ByID(ctx context.Context, id string) (*common.Recipe, error)
}
