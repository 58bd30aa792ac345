package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"blogread/cache"
	"blogread/models"
)

// CategoryRepository owns the denormalized category views. PostCount is
// derived from the posts collection and recomputed on every refresh.
type CategoryRepository struct {
	col   *mongo.Collection
	posts *mongo.Collection
	cache *cache.Cache
}

func NewCategoryRepository(db *mongo.Database, c *cache.Cache) *CategoryRepository {
	return &CategoryRepository{
		col:   db.Collection("categories"),
		posts: db.Collection("posts"),
		cache: c,
	}
}

func categoryKey(id int64) string { return fmt.Sprintf("category:%d", id) }

// GetByID returns the category view, preferring the cached copy.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var cat models.Category
	if err := r.cache.Get(ctx, categoryKey(id), &cat); err == nil {
		return &cat, nil
	}

	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&cat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_ = r.cache.Set(ctx, categoryKey(id), cat)
	return &cat, nil
}

// Refresh rebuilds the cached view from the durable store, recomputing the
// post count. Pull-and-overwrite: never an increment, so repeated refreshes
// converge. A category that no longer exists has its cache entry dropped.
func (r *CategoryRepository) Refresh(ctx context.Context, id int64) error {
	var cat models.Category
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&cat); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			_ = r.cache.Delete(ctx, categoryKey(id))
			return ErrNotFound
		}
		return err
	}

	count, err := r.posts.CountDocuments(ctx, bson.M{"category_ids": id})
	if err != nil {
		return err
	}
	cat.PostCount = count

	if _, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"post_count": count}}); err != nil {
		return err
	}
	return r.cache.Set(ctx, categoryKey(id), cat)
}
