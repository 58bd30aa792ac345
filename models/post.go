package models

import "time"

// Post is the authoritative post aggregate.
// Collection: posts
//
// CategoryIDs/TagIDs/AuthorID are the source of truth for relations; the
// denormalized views kept by the entity stores must stay consistent with them.
// AuthorID == 0 means the post has no author attached.
type Post struct {
	ID          int64     `bson:"_id" json:"id"`
	Slug        string    `bson:"slug" json:"slug"`
	Title       string    `bson:"title" json:"title"`
	Excerpt     string    `bson:"excerpt" json:"excerpt"`
	Body        string    `bson:"body" json:"body"`
	CategoryIDs []int64   `bson:"category_ids" json:"category_ids"`
	TagIDs      []int64   `bson:"tag_ids" json:"tag_ids"`
	AuthorID    int64     `bson:"author_id" json:"author_id"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
