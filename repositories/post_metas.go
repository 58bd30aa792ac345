package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogread/models"
)

// PostMetaRepository owns the lightweight post projections used for listing
// and slug lookup.
type PostMetaRepository struct {
	col *mongo.Collection
}

func NewPostMetaRepository(db *mongo.Database) *PostMetaRepository {
	return &PostMetaRepository{col: db.Collection("post_metas")}
}

// All returns every projection in listing order (newest first).
func (r *PostMetaRepository) All(ctx context.Context) ([]models.PostMeta, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var metas []models.PostMeta
	if err := cur.All(ctx, &metas); err != nil {
		return nil, err
	}
	return metas, nil
}

// IDBySlug resolves a slug to a post id.
func (r *PostMetaRepository) IDBySlug(ctx context.Context, slug string) (int64, error) {
	var doc struct {
		ID int64 `bson:"_id"`
	}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return doc.ID, nil
}

// Refresh rebuilds the projection from the given record. It is a full
// replace, so re-running it with the same record is a no-op in effect.
func (r *PostMetaRepository) Refresh(ctx context.Context, p *models.Post) error {
	meta := models.NewPostMeta(*p)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": meta.ID}, meta, opts)
	return err
}

// Remove drops the projection for a deleted post.
func (r *PostMetaRepository) Remove(ctx context.Context, id int64) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
