package models

import "time"

// PostMeta is the lightweight per-post projection used for listing, filtering
// and slug lookup without loading body text.
// Collection: post_metas
//
// It is an immutable snapshot rebuilt from the post record on every refresh.
type PostMeta struct {
	ID          int64     `bson:"_id" json:"id"`
	Slug        string    `bson:"slug" json:"slug"`
	Title       string    `bson:"title" json:"title"`
	Excerpt     string    `bson:"excerpt" json:"excerpt"`
	CategoryIDs []int64   `bson:"category_ids" json:"category_ids"`
	TagIDs      []int64   `bson:"tag_ids" json:"tag_ids"`
	AuthorID    int64     `bson:"author_id" json:"author_id"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// NewPostMeta projects a post record into its meta snapshot.
func NewPostMeta(p Post) PostMeta {
	return PostMeta{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		CategoryIDs: p.CategoryIDs,
		TagIDs:      p.TagIDs,
		AuthorID:    p.AuthorID,
		UpdatedAt:   p.UpdatedAt,
	}
}

// HasCategory reports whether the projection references the given category.
func (m PostMeta) HasCategory(id int64) bool {
	for _, c := range m.CategoryIDs {
		if c == id {
			return true
		}
	}
	return false
}

// HasTag reports whether the projection references the given tag.
func (m PostMeta) HasTag(id int64) bool {
	for _, t := range m.TagIDs {
		if t == id {
			return true
		}
	}
	return false
}
