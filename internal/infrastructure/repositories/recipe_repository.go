package repositories

import (
	"context"
	"errors"

	"recipe-discovery/internal/infrastructure/database"
	"recipe-discovery/internal/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultListLimit = 50

// RecipeRepository 使用者自建食譜
type RecipeRepository struct {
	collection *mongo.Collection
}

// NewRecipeRepository 創建自建食譜儲存
func NewRecipeRepository(db *database.MongoDB) *RecipeRepository {
	return &RecipeRepository{collection: db.Collection(database.CollectionRecipes)}
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *common.Recipe) error {
	_, err := r.collection.InsertOne(ctx, recipe)
	return err
}

func (r *RecipeRepository) GetByID(ctx context.Context, userID, id string) (*common.Recipe, error) {
	var recipe common.Recipe
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&recipe)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *RecipeRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*common.Recipe, error) {
	if limit < 1 {
		limit = defaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	recipes := []*common.Recipe{}
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return common.NotFoundError("recipe not found")
	}
	return nil
}
