package articlestore

import (
	"context"
	"errors"

	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/pkg/apperr"
)

// Overlay unions a read-only seed collection with the primary store. On a
// slug collision the primary copy wins. Writes only reach the primary, so a
// seed article is edited by saving an overriding copy.
type Overlay struct {
	primary article.Store
	seed    article.Store
}

func NewOverlay(primary, seed article.Store) *Overlay {
	return &Overlay{primary: primary, seed: seed}
}

func (o *Overlay) GetAll(ctx context.Context) ([]article.Article, error) {
	seeds, err := o.seed.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	primary, err := o.primary.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(primary))
	for _, a := range primary {
		taken[a.Slug] = struct{}{}
	}
	out := make([]article.Article, 0, len(primary)+len(seeds))
	for _, a := range seeds {
		if _, ok := taken[a.Slug]; !ok {
			out = append(out, a)
		}
	}
	return append(out, primary...), nil
}

func (o *Overlay) GetBySlug(ctx context.Context, slug string) (*article.Article, error) {
	a, err := o.primary.GetBySlug(ctx, slug)
	if err == nil || !errors.Is(err, apperr.ErrNotFound) {
		return a, err
	}
	return o.seed.GetBySlug(ctx, slug)
}

func (o *Overlay) Save(ctx context.Context, a *article.Article) error {
	return o.primary.Save(ctx, a)
}

// Delete refuses any slug the seed bundle carries. Removing only the
// primary copy would leave the seed showing through, so the article would
// still exist after a successful delete.
func (o *Overlay) Delete(ctx context.Context, slug string) error {
	seeded, err := o.seed.Exists(ctx, slug)
	if err != nil {
		return err
	}
	if seeded {
		return apperr.Validation("slug", "seed article is read-only")
	}
	return o.primary.Delete(ctx, slug)
}

func (o *Overlay) Exists(ctx context.Context, slug string) (bool, error) {
	ok, err := o.primary.Exists(ctx, slug)
	if err != nil || ok {
		return ok, err
	}
	return o.seed.Exists(ctx, slug)
}
