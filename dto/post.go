package dto

import (
	"time"

	"blogread/models"
)

// CategoryDTO is the hydrated category view embedded in a post response.
type CategoryDTO struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	PostCount int64  `json:"post_count"`
}

// TagDTO is the hydrated tag view embedded in a post response.
type TagDTO struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// AuthorDTO is the hydrated author view embedded in a post response.
type AuthorDTO struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// PostDTO is the fully hydrated post view returned by the read API.
//
// Categories/Tags/Author are derived from the record's relation ids at read
// time and are never authoritative; they are built per request and discarded.
// A dangling relation id is simply absent from the hydrated lists.
type PostDTO struct {
	ID          int64         `json:"id"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Excerpt     string        `json:"excerpt"`
	Body        string        `json:"body,omitempty"`
	CategoryIDs []int64       `json:"category_ids"`
	TagIDs      []int64       `json:"tag_ids"`
	Categories  []CategoryDTO `json:"categories"`
	Tags        []TagDTO      `json:"tags"`
	Author      *AuthorDTO    `json:"author,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewPostDTO maps a post record into an un-hydrated DTO; relation views are
// filled in by the hydration engine.
func NewPostDTO(p models.Post) PostDTO {
	return PostDTO{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Body:        p.Body,
		CategoryIDs: p.CategoryIDs,
		TagIDs:      p.TagIDs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewCategoryDTO maps a category view.
func NewCategoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Slug: c.Slug, Name: c.Name, PostCount: c.PostCount}
}

// NewTagDTO maps a tag view.
func NewTagDTO(t models.Tag) TagDTO {
	return TagDTO{ID: t.ID, Slug: t.Slug, Name: t.Name}
}

// NewAuthorDTO maps an author view.
func NewAuthorDTO(a models.Author) AuthorDTO {
	return AuthorDTO{ID: a.ID, Username: a.Username, DisplayName: a.DisplayName, AvatarURL: a.AvatarURL}
}

// ClearContent returns a copy with the body blanked. All listing and search
// responses go through this to bound payload size.
func (p PostDTO) ClearContent() PostDTO {
	p.Body = ""
	return p
}
