package article

import "context"

// Store is the persistence contract every backend satisfies. Which backend
// is used is decided once at startup.
type Store interface {
	// GetAll returns every readable article. Order is backend specific.
	GetAll(ctx context.Context) ([]Article, error)
	// GetBySlug fails with apperr.ErrNotFound when slug is unknown.
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	// Save inserts or wholly replaces the article keyed by its slug.
	Save(ctx context.Context, a *Article) error
	// Delete fails with apperr.ErrNotFound when slug is unknown.
	Delete(ctx context.Context, slug string) error
	Exists(ctx context.Context, slug string) (bool, error)
}
