package recipe

import (
	"reflect"
	"testing"

	"recipe-discovery/internal/pkg/common"
)

func TestMatchPercentage(t *testing.T) {
	tests := []struct {
		matched, required int
		want              int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{1, 8, 13},
		{3, 3, 100},
	}
	for _, tc := range tests {
		if got := MatchPercentage(tc.matched, tc.required); got != tc.want {
			t.Errorf("MatchPercentage(%d, %d) = %d; want %d", tc.matched, tc.required, got, tc.want)
		}
	}
}

func TestMatchRecipes(t *testing.T) {
	candidates := []common.RecipeCandidate{
		{ID: "1", Title: "Omelette", RequiredIngredients: []string{"Egg", "milk", "butter"}, Source: common.SourceAPI},
		{ID: "2", Title: "Tomato salad", RequiredIngredients: []string{"tomato", "red_onion"}, Source: common.SourceAPI},
		{ID: "3", Title: "Scrambled eggs", RequiredIngredients: []string{"egg", "butter", "salt"}, Source: common.SourceCreated},
	}

	results := MatchRecipes([]string{"EGG", "Tomato", "red onion", "butter"}, candidates)

	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.RecipeName
	}
	want := []string{"Tomato salad", "Scrambled eggs", "Omelette"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("order = %q; want %q", names, want)
	}

	salad := results[0]
	if salad.MatchPercentage != 100 || len(salad.Missing) != 0 {
		t.Errorf("salad = %+v; want full match", salad)
	}
	if !reflect.DeepEqual(salad.Matched, []string{"tomato", "red onion"}) {
		t.Errorf("salad.Matched = %q", salad.Matched)
	}

	eggs := results[1]
	if eggs.MatchPercentage != 67 || !reflect.DeepEqual(eggs.Missing, []string{"salt"}) {
		t.Errorf("eggs = %+v; want 67%% missing salt", eggs)
	}
	if eggs.RecipeData == nil || eggs.RecipeData.ID != "3" {
		t.Errorf("eggs.RecipeData = %+v; want candidate 3", eggs.RecipeData)
	}
}

func TestMatchRecipesPartitionsRequired(t *testing.T) {
	candidates := []common.RecipeCandidate{
		{Title: "Stew", RequiredIngredients: []string{"Beef", "carrot", "CARROT", "potato", "onion"}},
	}
	r := MatchRecipes([]string{"carrot", "onion"}, candidates)[0]

	if got := len(r.Matched) + len(r.Missing); got != 4 {
		t.Errorf("matched+missing = %d; want 4 distinct required", got)
	}
	for _, m := range r.Matched {
		for _, x := range r.Missing {
			if m == x {
				t.Errorf("%q is both matched and missing", m)
			}
		}
	}
	if r.MatchPercentage != 50 {
		t.Errorf("MatchPercentage = %d; want 50", r.MatchPercentage)
	}
}

func TestMatchRecipesIgnoresBlankRequired(t *testing.T) {
	candidates := []common.RecipeCandidate{
		{Title: "Boiled egg", RequiredIngredients: []string{"Egg", "2", " ", "eggs"}},
	}
	r := MatchRecipes([]string{"egg"}, candidates)[0]

	if !reflect.DeepEqual(r.Matched, []string{"egg"}) || !reflect.DeepEqual(r.Missing, []string{"eggs"}) {
		t.Errorf("matched, missing = %q, %q; want [egg], [eggs]", r.Matched, r.Missing)
	}
	if r.MatchPercentage != 50 {
		t.Errorf("MatchPercentage = %d; want 50", r.MatchPercentage)
	}
}

func TestMatchRecipesTieBreak(t *testing.T) {
	candidates := []common.RecipeCandidate{
		{ID: "a", Title: "banana bread", RequiredIngredients: []string{"banana"}, Source: common.SourceAPI},
		{ID: "b", Title: "Apple pie", RequiredIngredients: []string{"banana"}, Source: common.SourceAPI},
		{ID: "c", Title: "Zucchini bread", RequiredIngredients: []string{"banana"}, Source: common.SourceCreated},
		{ID: "d", Title: "apple pie", RequiredIngredients: []string{"banana"}, Source: common.SourceAPI},
	}
	results := MatchRecipes([]string{"banana"}, candidates)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.RecipeData.ID
	}
	want := []string{"c", "b", "d", "a"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %q; want %q", ids, want)
	}
}

func TestMatchRecipesEmpty(t *testing.T) {
	if got := MatchRecipes([]string{"egg"}, nil); got == nil || len(got) != 0 {
		t.Errorf("MatchRecipes(nil) = %#v; want empty slice", got)
	}

	r := MatchRecipes(nil, []common.RecipeCandidate{{Title: "Water"}})[0]
	if r.MatchPercentage != 0 {
		t.Errorf("MatchPercentage = %d; want 0 for no required ingredients", r.MatchPercentage)
	}
}

func TestSplitTop(t *testing.T) {
	results := make([]common.MatchResult, 7)

	tests := []struct {
		n        int
		wantLen  int
		wantMore int
	}{
		{5, 5, 2},
		{0, DefaultVisible, 2},
		{10, 7, 0},
		{7, 7, 0},
	}
	for _, tc := range tests {
		top, more := SplitTop(results, tc.n)
		if len(top) != tc.wantLen || more != tc.wantMore {
			t.Errorf("SplitTop(7, %d) = %d, %d; want %d, %d", tc.n, len(top), more, tc.wantLen, tc.wantMore)
		}
	}
}
