package repositories

import (
	"context"

	"recipe-discovery/internal/infrastructure/database"
	"recipe-discovery/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MealPlanRepository 餐點計畫
type MealPlanRepository struct {
	collection *mongo.Collection
}

// NewMealPlanRepository 創建餐點計畫儲存
func NewMealPlanRepository(db *database.MongoDB) *MealPlanRepository {
	return &MealPlanRepository{collection: db.Collection(database.CollectionMealPlans)}
}

func (r *MealPlanRepository) Create(ctx context.Context, plan *common.MealPlan) error {
	_, err := r.collection.InsertOne(ctx, plan)
	return err
}

// ListByUser 日期為 YYYY-MM-DD 字串，可直接以字典序比較
func (r *MealPlanRepository) ListByUser(ctx context.Context, userID, from, to string) ([]*common.MealPlan, error) {
	query := bson.M{"user_id": userID}
	if rng := dateRange(from, to); len(rng) > 0 {
		query["date"] = rng
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []*common.MealPlan{}
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *MealPlanRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return common.NotFoundError("meal plan not found")
	}
	return nil
}

func dateRange(from, to string) bson.M {
	rng := bson.M{}
	if from != "" {
		rng["$gte"] = from
	}
	if to != "" {
		rng["$lte"] = to
	}
	return rng
}
