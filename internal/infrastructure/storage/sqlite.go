package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"recipe-discovery/internal/pkg/common"

	_ "modernc.org/sqlite"
)

const defaultLimit = 50

// 固定寬度，字串排序即時間排序
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStorage 本機瀏覽紀錄與營養估算紀錄
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage 開啟資料庫並建立資料表
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return storage, nil
}

// Close 關閉資料庫
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Ping 健康檢查
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS recipe_views (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT NOT NULL,
        recipe_id TEXT NOT NULL,
        title TEXT NOT NULL,
        image TEXT NOT NULL DEFAULT '',
        source TEXT NOT NULL,
        viewed_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS nutrition_log (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        food_name TEXT NOT NULL,
        calories TEXT NOT NULL,
        model TEXT NOT NULL DEFAULT '',
        facts TEXT NOT NULL,
        created_at TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_recipe_views_user ON recipe_views(user_id, viewed_at);
    CREATE INDEX IF NOT EXISTS idx_nutrition_log_user ON nutrition_log(user_id, created_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordView 寫入一筆瀏覽紀錄
func (s *SQLiteStorage) RecordView(ctx context.Context, view *common.RecipeView) error {
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO recipe_views (user_id, recipe_id, title, image, source, viewed_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, view.UserID, view.RecipeID, view.Title, view.Image, string(view.Source), formatTime(view.ViewedAt))
	if err != nil {
		return fmt.Errorf("failed to insert recipe view: %w", err)
	}
	return nil
}

// ListViews 最近的瀏覽紀錄，新的在前
func (s *SQLiteStorage) ListViews(ctx context.Context, userID string, limit int) ([]*common.RecipeView, error) {
	if limit < 1 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT user_id, recipe_id, title, image, source, viewed_at
        FROM recipe_views
        WHERE user_id = ?
        ORDER BY viewed_at DESC, id DESC
        LIMIT ?
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe views: %w", err)
	}
	defer rows.Close()

	views := []*common.RecipeView{}
	for rows.Next() {
		view := &common.RecipeView{}
		var source, viewedAt string
		if err := rows.Scan(&view.UserID, &view.RecipeID, &view.Title, &view.Image, &source, &viewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe view: %w", err)
		}
		view.Source = common.RecipeSource(source)
		if view.ViewedAt, err = parseTime(viewedAt); err != nil {
			return nil, fmt.Errorf("failed to parse viewed_at: %w", err)
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

// SaveNutrition 寫入一筆營養估算結果
func (s *SQLiteStorage) SaveNutrition(ctx context.Context, entry *common.NutritionEntry) error {
	if entry.ID == "" {
		entry.ID = common.GenerateUUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	facts, err := common.ToJSON(entry.Facts)
	if err != nil {
		return fmt.Errorf("failed to encode nutrition facts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO nutrition_log (id, user_id, food_name, calories, model, facts, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `, entry.ID, entry.UserID, entry.Facts.FoodName, entry.Facts.Calories, entry.Facts.Model, facts, formatTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert nutrition entry: %w", err)
	}
	return nil
}

// ListNutrition 最近的營養估算紀錄，新的在前
func (s *SQLiteStorage) ListNutrition(ctx context.Context, userID string, limit int) ([]*common.NutritionEntry, error) {
	if limit < 1 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, facts, created_at
        FROM nutrition_log
        WHERE user_id = ?
        ORDER BY created_at DESC
        LIMIT ?
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nutrition log: %w", err)
	}
	defer rows.Close()

	entries := []*common.NutritionEntry{}
	for rows.Next() {
		entry := &common.NutritionEntry{}
		var facts, createdAt string
		if err := rows.Scan(&entry.ID, &entry.UserID, &facts, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan nutrition entry: %w", err)
		}
		if err := common.ParseJSON(facts, &entry.Facts); err != nil {
			return nil, fmt.Errorf("failed to decode nutrition facts: %w", err)
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
