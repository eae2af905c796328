package database

import (
	"context"
	"fmt"
	"time"

	"recipe-discovery/internal/infrastructure/config"
	"recipe-discovery/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// 集合名稱
const (
	CollectionRecipes   = "recipes"
	CollectionMealPlans = "meal_plans"
)

// MongoDB 使用者食譜與餐點計畫的連線
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	config   config.MongoDBConfig
}

// NewMongoDB 創建連線物件，需呼叫 Connect
func NewMongoDB(cfg config.MongoDBConfig) *MongoDB {
	return &MongoDB{config: cfg}
}

// Connect 連線並建立索引
func (m *MongoDB) Connect(ctx context.Context) error {
	clientOpts := options.Client().
		ApplyURI(m.config.URI).
		SetMaxPoolSize(m.config.MaxPoolSize).
		SetMinPoolSize(m.config.MinPoolSize).
		SetConnectTimeout(m.config.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)
	common.LogInfo("Connected to MongoDB", zap.String("database", m.config.Database))

	m.createIndexes(ctx)
	return nil
}

// Close 關閉連線
func (m *MongoDB) Close(ctx context.Context) error {
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}

// Collection 取得集合
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

func (m *MongoDB) createIndexes(ctx context.Context) {
	indexes := map[string][]mongo.IndexModel{
		CollectionRecipes: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "ingredients", Value: 1}}},
		},
		CollectionMealPlans: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "recipe_id", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		coll := m.database.Collection(collection)
		for _, idx := range models {
			if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
				common.LogWarn("Failed to create index",
					zap.String("collection", collection),
					zap.Error(err),
				)
			}
		}
	}
}

// Health 檢查連線
func (m *MongoDB) Health(ctx context.Context) error {
	if m.client == nil {
		return fmt.Errorf("mongodb is not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary())
}
