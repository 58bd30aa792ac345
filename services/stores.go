package services

import (
	"context"

	"blogread/models"
)

// PostStore is the authoritative post record store the engine reads from.
// ApplyPendingUpdate re-reads the record after an upstream write and
// overwrites the store's own cached copy.
type PostStore interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListIDs(ctx context.Context) ([]int64, error)
	ApplyPendingUpdate(ctx context.Context, id int64) (*models.Post, error)
	Delete(ctx context.Context, id int64) error
}

// PostMetaStore owns the lightweight projections used for listing and slug
// lookup.
type PostMetaStore interface {
	All(ctx context.Context) ([]models.PostMeta, error)
	IDBySlug(ctx context.Context, slug string) (int64, error)
	Refresh(ctx context.Context, p *models.Post) error
	Remove(ctx context.Context, id int64) error
}

// CategoryStore resolves category ids and refreshes the store's own cached
// denormalized view. Refresh is pull-and-overwrite, never an increment.
type CategoryStore interface {
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Refresh(ctx context.Context, id int64) error
}

// TagStore mirrors CategoryStore for tags.
type TagStore interface {
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	Refresh(ctx context.Context, id int64) error
}

// AuthorStore mirrors CategoryStore for authors.
type AuthorStore interface {
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	Refresh(ctx context.Context, id int64) error
}
