package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"recipe-discovery/internal/pkg/common"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecipeViews(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	views := []*common.RecipeView{
		{UserID: "alice", RecipeID: "1", Title: "Toast", Source: common.SourceAPI, ViewedAt: base},
		{UserID: "alice", RecipeID: "u1", Title: "Soup", Source: common.SourceCreated, ViewedAt: base.Add(time.Minute)},
		{UserID: "bob", RecipeID: "2", Title: "Salad", Source: common.SourceAPI, ViewedAt: base},
		{UserID: "alice", RecipeID: "3", Title: "Pie", Source: common.SourceAPI, ViewedAt: base.Add(2 * time.Minute)},
	}
	for _, v := range views {
		if err := s.RecordView(ctx, v); err != nil {
			t.Fatalf("RecordView: %v", err)
		}
	}

	got, err := s.ListViews(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("ListViews: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Pie" || got[1].Title != "Soup" {
		t.Fatalf("ListViews = %+v; want newest two", got)
	}
	if got[1].Source != common.SourceCreated || !got[1].ViewedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("view = %+v", got[1])
	}

	all, _ := s.ListViews(ctx, "alice", 0)
	if len(all) != 3 {
		t.Errorf("ListViews(limit 0) = %d; want 3", len(all))
	}

	none, err := s.ListViews(ctx, "carol", 10)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("ListViews(carol) = %#v, %v; want empty slice", none, err)
	}
}

func TestRecordViewDefaultsTime(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	v := &common.RecipeView{UserID: "u", RecipeID: "1", Source: common.SourceAPI}
	if err := s.RecordView(ctx, v); err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	if v.ViewedAt.IsZero() {
		t.Error("ViewedAt not set")
	}
}

func TestNutritionLog(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	older := &common.NutritionEntry{
		UserID:    "alice",
		Facts:     common.NutritionFacts{FoodName: "Apple", Calories: "95 kcal", Confidence: common.ConfidenceHigh},
		CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	newer := &common.NutritionEntry{
		UserID:    "alice",
		Facts:     common.NutritionFacts{FoodName: "Ramen", Calories: "450 kcal", Confidence: common.ConfidenceLow, Model: "model-b"},
		CreatedAt: time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC),
	}
	for _, e := range []*common.NutritionEntry{older, newer} {
		if err := s.SaveNutrition(ctx, e); err != nil {
			t.Fatalf("SaveNutrition: %v", err)
		}
		if e.ID == "" {
			t.Error("entry ID not generated")
		}
	}

	got, err := s.ListNutrition(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("ListNutrition: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d; want 2", len(got))
	}
	if got[0].Facts.FoodName != "Ramen" || got[0].Facts.Model != "model-b" || got[0].ID != newer.ID {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Facts.Confidence != common.ConfidenceHigh || !got[1].CreatedAt.Equal(older.CreatedAt) {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	s.RecordView(ctx, &common.RecipeView{UserID: "u", RecipeID: "1", Source: common.SourceAPI})
	s.Close()

	s, err = NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	views, err := s.ListViews(ctx, "u", 10)
	if err != nil || len(views) != 1 {
		t.Errorf("ListViews after reopen = %v, %v; want 1 view", views, err)
	}
}

func TestListViewsOrdersSubsecondTimes(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.RecordView(ctx, &common.RecipeView{UserID: "u", RecipeID: "whole", Source: common.SourceAPI, ViewedAt: base})
	s.RecordView(ctx, &common.RecipeView{UserID: "u", RecipeID: "later", Source: common.SourceAPI, ViewedAt: base.Add(500 * time.Millisecond)})

	views, err := s.ListViews(ctx, "u", 10)
	if err != nil {
		t.Fatalf("ListViews: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("ListViews = %d views; want 2", len(views))
	}
	if views[0].RecipeID != "later" {
		t.Errorf("ListViews order = %q, %q; want later first", views[0].RecipeID, views[1].RecipeID)
	}
}
