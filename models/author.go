package models

// Author is the denormalized author view kept by the author store.
// Collection: authors
type Author struct {
	ID          int64  `bson:"_id" json:"id"`
	Username    string `bson:"username" json:"username"`
	DisplayName string `bson:"display_name" json:"display_name"`
	AvatarURL   string `bson:"avatar_url" json:"avatar_url"`
}
