package models

// Category is the denormalized category view kept by the category store.
// PostCount is recomputed on refresh, never incremented in place.
// Collection: categories
type Category struct {
	ID          int64  `bson:"_id" json:"id"`
	Slug        string `bson:"slug" json:"slug"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	PostCount   int64  `bson:"post_count" json:"post_count"`
}
