package db

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"blogread/config"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	db         *mongo.Database
)

// Init initializes the global Mongo client and database using config values.
func Init(ctx context.Context) error {
	var initErr error
	clientOnce.Do(func() {
		cfg := config.GetConfig()

		cl, err := mongo.NewClient(options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			initErr = err
			return
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := cl.Connect(ctx); err != nil {
			initErr = err
			return
		}
		// Ping to verify connection
		if err := cl.Ping(ctx, readpref.Primary()); err != nil {
			initErr = err
			return
		}
		client = cl
		db = client.Database(cfg.Mongo.DBName)

		// Ensure indexes for all collections
		if err := ensureIndexes(ctx, db); err != nil {
			initErr = err
			return
		}
		log.Println("MongoDB connected and indexes ensured")
	})
	return initErr
}

func Client() *mongo.Client     { return client }
func Database() *mongo.Database { return db }

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	// posts: unique slug, relation-id indexes for filtered listings
	{
		if _, err := d.Collection("posts").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("uniq_slug").SetUnique(true),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("posts").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "category_ids", Value: 1}},
			Options: options.Index().SetName("idx_category_ids"),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("posts").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "tag_ids", Value: 1}},
			Options: options.Index().SetName("idx_tag_ids"),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("posts").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_updated_at_desc"),
		}); err != nil {
			return err
		}
	}

	// post_metas: unique slug for the slug→id lookup, updated_at for listing order
	{
		if _, err := d.Collection("post_metas").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("uniq_meta_slug").SetUnique(true),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("post_metas").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_meta_updated_at_desc"),
		}); err != nil {
			return err
		}
	}

	// categories/tags/authors: unique slug or username
	{
		if _, err := d.Collection("categories").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("uniq_category_slug").SetUnique(true),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("tags").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("uniq_tag_slug").SetUnique(true),
		}); err != nil {
			return err
		}
		if _, err := d.Collection("authors").Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("uniq_author_username").SetUnique(true),
		}); err != nil {
			return err
		}
	}
	return nil
}
