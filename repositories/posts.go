package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogread/cache"
	"blogread/models"
)

// PostRepository owns the authoritative post aggregate plus a cache-aside
// view of it. The upstream writer applies updates directly to the posts
// collection; ApplyPendingUpdate re-reads the now-current document and
// overwrites the cached copy.
type PostRepository struct {
	col   *mongo.Collection
	cache *cache.Cache
}

func NewPostRepository(db *mongo.Database, c *cache.Cache) *PostRepository {
	return &PostRepository{col: db.Collection("posts"), cache: c}
}

func postKey(id int64) string { return fmt.Sprintf("post:%d", id) }

// GetByID returns the post record, preferring the cached copy.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var p models.Post
	if err := r.cache.Get(ctx, postKey(id), &p); err == nil {
		return &p, nil
	}

	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Repopulate on miss; a failed Set only costs the next read a trip to mongo.
	_ = r.cache.Set(ctx, postKey(id), p)
	return &p, nil
}

// ListIDs enumerates all post ids without loading documents.
func (r *PostRepository) ListIDs(ctx context.Context) ([]int64, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []int64
	for cur.Next(ctx) {
		var doc struct {
			ID int64 `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

// ApplyPendingUpdate re-reads the record from mongo and overwrites the cached
// copy, returning the current state. The authoritative write has already
// happened upstream.
func (r *PostRepository) ApplyPendingUpdate(ctx context.Context, id int64) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.cache.Set(ctx, postKey(id), p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the record and its cached copy.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return r.cache.Delete(ctx, postKey(id))
}
