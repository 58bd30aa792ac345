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

// AuthorRepository owns the denormalized author views.
type AuthorRepository struct {
	col   *mongo.Collection
	cache *cache.Cache
}

func NewAuthorRepository(db *mongo.Database, c *cache.Cache) *AuthorRepository {
	return &AuthorRepository{col: db.Collection("authors"), cache: c}
}

func authorKey(id int64) string { return fmt.Sprintf("author:%d", id) }

// GetByID returns the author view, preferring the cached copy.
func (r *AuthorRepository) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	var a models.Author
	if err := r.cache.Get(ctx, authorKey(id), &a); err == nil {
		return &a, nil
	}

	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_ = r.cache.Set(ctx, authorKey(id), a)
	return &a, nil
}

// Refresh overwrites the cached view from the durable store.
func (r *AuthorRepository) Refresh(ctx context.Context, id int64) error {
	var a models.Author
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			_ = r.cache.Delete(ctx, authorKey(id))
			return ErrNotFound
		}
		return err
	}
	return r.cache.Set(ctx, authorKey(id), a)
}
