package models

// Tag is the denormalized tag view kept by the tag store.
// Collection: tags
type Tag struct {
	ID        int64  `bson:"_id" json:"id"`
	Slug      string `bson:"slug" json:"slug"`
	Name      string `bson:"name" json:"name"`
	PostCount int64  `bson:"post_count" json:"post_count"`
}
