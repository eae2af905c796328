package search

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"recipe-discovery/internal/core/httpclient"
	"recipe-discovery/internal/core/vision"
	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"go.uber.org/zap"
)

const recipeProvider = "spoonacular"

// rankingMinimizeMissing findByIngredients 的 ranking=2：優先減少缺少的食材
const rankingMinimizeMissing = "2"

type ingredientRef struct {
	Name string `json:"name"`
}

type recipeInfo struct {
	ID                  int             `json:"id"`
	Title               string          `json:"title"`
	Image               string          `json:"image"`
	Instructions        string          `json:"instructions"`
	ReadyInMinutes      int             `json:"readyInMinutes"`
	Servings            int             `json:"servings"`
	SourceURL           string          `json:"sourceUrl"`
	Cuisines            []string        `json:"cuisines"`
	ExtendedIngredients []ingredientRef `json:"extendedIngredients"`
}

type byIngredientsItem struct {
	ID                int             `json:"id"`
	Title             string          `json:"title"`
	Image             string          `json:"image"`
	UsedIngredients   []ingredientRef `json:"usedIngredients"`
	MissedIngredients []ingredientRef `json:"missedIngredients"`
}

// SpoonacularClient 食譜搜尋供應商
type SpoonacularClient struct {
	cfg    config.SpoonacularConfig
	client *httpclient.Client
}

// NewSpoonacularClient 創建食譜搜尋客戶端
func NewSpoonacularClient(cfg config.SpoonacularConfig, client *httpclient.Client) *SpoonacularClient {
	return &SpoonacularClient{cfg: cfg, client: client}
}

// Random 隨機食譜
func (c *SpoonacularClient) Random(ctx context.Context, number int) ([]common.Recipe, error) {
	var result struct {
		Recipes []recipeInfo `json:"recipes"`
	}
	params := map[string]string{"number": c.number(number)}
	if err := c.get(ctx, "/recipes/random", params, &result); err != nil {
		return nil, err
	}

	recipes := make([]common.Recipe, 0, len(result.Recipes))
	for _, r := range result.Recipes {
		recipes = append(recipes, r.toRecipe())
	}
	return recipes, nil
}

// ByCuisine 依菜系搜尋
func (c *SpoonacularClient) ByCuisine(ctx context.Context, cuisine string, number int) ([]common.Recipe, error) {
	cuisine = strings.TrimSpace(cuisine)
	if cuisine == "" {
		return nil, common.InvalidInputError("cuisine is required", nil)
	}

	var result struct {
		Results []recipeInfo `json:"results"`
	}
	params := map[string]string{
		"cuisine":              cuisine,
		"number":               c.number(number),
		"addRecipeInformation": "true",
		"fillIngredients":      "true",
	}
	if err := c.get(ctx, "/recipes/complexSearch", params, &result); err != nil {
		return nil, err
	}

	recipes := make([]common.Recipe, 0, len(result.Results))
	for _, r := range result.Results {
		recipe := r.toRecipe()
		if recipe.Cuisine == "" {
			recipe.Cuisine = cuisine
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// ByIngredients 依食材搜尋，回傳可直接比對的候選食譜
func (c *SpoonacularClient) ByIngredients(ctx context.Context, ingredients []string, number int) ([]common.RecipeCandidate, error) {
	if len(ingredients) == 0 {
		return []common.RecipeCandidate{}, nil
	}

	var result []byIngredientsItem
	params := map[string]string{
		"ingredients":  strings.Join(ingredients, ","),
		"number":       c.number(number),
		"ranking":      rankingMinimizeMissing,
		"ignorePantry": "true",
	}
	if err := c.get(ctx, "/recipes/findByIngredients", params, &result); err != nil {
		return nil, err
	}

	candidates := make([]common.RecipeCandidate, 0, len(result))
	for _, item := range result {
		names := make([]string, 0, len(item.UsedIngredients)+len(item.MissedIngredients))
		for _, ing := range item.UsedIngredients {
			names = append(names, ing.Name)
		}
		for _, ing := range item.MissedIngredients {
			names = append(names, ing.Name)
		}

		id := strconv.Itoa(item.ID)
		recipe := &common.Recipe{
			ID:          id,
			Title:       item.Title,
			Image:       item.Image,
			Ingredients: names,
			Source:      common.SourceAPI,
		}
		candidates = append(candidates, common.RecipeCandidate{
			ID:                  id,
			Title:               item.Title,
			Image:               item.Image,
			RequiredIngredients: vision.NormalizeAll(names),
			Source:              common.SourceAPI,
			Recipe:              recipe,
		})
	}

	common.LogDebug("Recipe search by ingredients",
		zap.Int("ingredients", len(ingredients)),
		zap.Int("results", len(candidates)),
	)
	return candidates, nil
}

// ByID 食譜詳細資訊
func (c *SpoonacularClient) ByID(ctx context.Context, id string) (*common.Recipe, error) {
	if _, err := strconv.Atoi(id); err != nil {
		return nil, common.InvalidInputError("recipe id must be numeric", err)
	}

	var result recipeInfo
	if err := c.get(ctx, "/recipes/"+url.PathEscape(id)+"/information", nil, &result); err != nil {
		return nil, err
	}
	recipe := result.toRecipe()
	return &recipe, nil
}

func (c *SpoonacularClient) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	if c.cfg.APIKey == "" {
		return common.ConfigurationError("recipe search API key is not configured").WithProvider(recipeProvider)
	}

	req, err := c.client.R(ctx)
	if err != nil {
		return err
	}
	req.SetQueryParam("apiKey", c.cfg.APIKey).SetQueryParams(params)

	resp, err := c.client.Get(req, path)
	if err != nil {
		return err
	}
	if err := common.ParseJSONBytes(resp.Body(), out); err != nil {
		return common.ParseError("invalid recipe search response", err).WithProvider(recipeProvider)
	}
	return nil
}

func (c *SpoonacularClient) number(n int) string {
	if n <= 0 {
		n = c.cfg.Number
	}
	if n <= 0 {
		n = 10
	}
	if n > 100 {
		n = 100
	}
	return strconv.Itoa(n)
}

func (r recipeInfo) toRecipe() common.Recipe {
	names := make([]string, 0, len(r.ExtendedIngredients))
	for _, ing := range r.ExtendedIngredients {
		names = append(names, ing.Name)
	}
	cuisine := ""
	if len(r.Cuisines) > 0 {
		cuisine = r.Cuisines[0]
	}
	return common.Recipe{
		ID:           strconv.Itoa(r.ID),
		Title:        r.Title,
		Image:        r.Image,
		Ingredients:  names,
		Instructions: r.Instructions,
		Cuisine:      cuisine,
		ReadyMinutes: r.ReadyInMinutes,
		Servings:     r.Servings,
		SourceURL:    r.SourceURL,
		Source:       common.SourceAPI,
	}
}
