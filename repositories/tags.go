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

// TagRepository owns the denormalized tag views, mirroring the category
// repository shape.
type TagRepository struct {
	col   *mongo.Collection
	posts *mongo.Collection
	cache *cache.Cache
}

func NewTagRepository(db *mongo.Database, c *cache.Cache) *TagRepository {
	return &TagRepository{
		col:   db.Collection("tags"),
		posts: db.Collection("posts"),
		cache: c,
	}
}

func tagKey(id int64) string { return fmt.Sprintf("tag:%d", id) }

// GetByID returns the tag view, preferring the cached copy.
func (r *TagRepository) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	var tag models.Tag
	if err := r.cache.Get(ctx, tagKey(id), &tag); err == nil {
		return &tag, nil
	}

	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&tag); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_ = r.cache.Set(ctx, tagKey(id), tag)
	return &tag, nil
}

// Refresh rebuilds the cached view from the durable store, recomputing the
// post count.
func (r *TagRepository) Refresh(ctx context.Context, id int64) error {
	var tag models.Tag
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&tag); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			_ = r.cache.Delete(ctx, tagKey(id))
			return ErrNotFound
		}
		return err
	}

	count, err := r.posts.CountDocuments(ctx, bson.M{"tag_ids": id})
	if err != nil {
		return err
	}
	tag.PostCount = count

	if _, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"post_count": count}}); err != nil {
		return err
	}
	return r.cache.Set(ctx, tagKey(id), tag)
}
