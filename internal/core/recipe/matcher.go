package recipe

import (
	"math"
	"sort"
	"strings"

	"recipe-discovery/internal/core/vision"
	"recipe-discovery/internal/pkg/common"
)

// DefaultVisible 清單預設顯示的筆數，其餘以「顯示更多」展開
const DefaultVisible = 5

// MatchRecipes 計算每個候選食譜已有與缺少的食材
//
// 結果依比對百分比由高到低排序；相同時自建食譜在前，再依標題（不分大小寫），
// 其餘保持輸入順序。
func MatchRecipes(ingredients []string, candidates []common.RecipeCandidate) []common.MatchResult {
	have := make(map[string]struct{}, len(ingredients))
	for _, name := range vision.NormalizeAll(ingredients) {
		have[name] = struct{}{}
	}

	results := make([]common.MatchResult, 0, len(candidates))
	for i := range candidates {
		results = append(results, matchOne(have, &candidates[i]))
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MatchPercentage != b.MatchPercentage {
			return a.MatchPercentage > b.MatchPercentage
		}
		if a.Source != b.Source {
			return a.Source == common.SourceCreated
		}
		return strings.ToLower(a.RecipeName) < strings.ToLower(b.RecipeName)
	})
	return results
}

func matchOne(have map[string]struct{}, c *common.RecipeCandidate) common.MatchResult {
	// 分母為正規化並去重後的必要食材，正規化為空字串的項目不計
	required := vision.NormalizeAll(c.RequiredIngredients)

	matched := make([]string, 0, len(required))
	missing := make([]string, 0, len(required))
	for _, name := range required {
		if _, ok := have[name]; ok {
			matched = append(matched, name)
		} else {
			missing = append(missing, name)
		}
	}

	return common.MatchResult{
		RecipeName:      c.Title,
		Matched:         matched,
		Missing:         missing,
		MatchPercentage: MatchPercentage(len(matched), len(required)),
		Source:          c.Source,
		RecipeData:      c,
	}
}

// MatchPercentage round(100 * matched / max(1, required))
func MatchPercentage(matched, required int) int {
	if required < 1 {
		required = 1
	}
	return int(math.Round(100 * float64(matched) / float64(required)))
}

// SplitTop 取前 n 筆顯示，回傳剩餘筆數
func SplitTop(results []common.MatchResult, n int) ([]common.MatchResult, int) {
	if n <= 0 {
		n = DefaultVisible
	}
	if len(results) <= n {
		return results, 0
	}
	return results[:n], len(results) - n
}
