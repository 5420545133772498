package article

import (
	"context"
	"strings"
	"time"

	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"github.com/nadi-health/core/internal/pkg/pagination"
	"github.com/nadi-health/core/internal/pkg/response"
	"go.uber.org/zap"
)

type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Create validates, defaults and stores a new article. actorName is the
// display name of the acting user and becomes the author when none is given.
func (s *Service) Create(ctx context.Context, in Article, actorName string) (*Article, error) {
	a := in.Clone()
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return nil, apperr.Validation("title", "is required")
	}
	if a.Slug == "" {
		a.Slug = Slugify(a.Title)
		if a.Slug == "" {
			return nil, apperr.Validation("slug", "cannot be derived from title")
		}
	} else if !ValidSlug(a.Slug) {
		return nil, apperr.Validation("slug", "must contain only lower-case letters, digits and single hyphens")
	}

	exists, err := s.store.Exists(ctx, a.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.DuplicateSlug(a.Slug)
	}

	ApplyDefaults(&a, actorName, s.now())
	if err := Validate(&a); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, &a); err != nil {
		return nil, err
	}
	s.logger.Info("article created", zap.String("slug", a.Slug), zap.Int("blocks", len(a.Blocks)))
	return &a, nil
}

// Update replaces the stored article wholesale. Fields are not merged and
// no defaults are applied.
func (s *Service) Update(ctx context.Context, in Article) (*Article, error) {
	a := in.Clone()
	if a.Slug == "" {
		return nil, apperr.Validation("slug", "is required")
	}
	exists, err := s.store.Exists(ctx, a.Slug)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("article", a.Slug)
	}
	normalizeCollections(&a)
	if err := Validate(&a); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, &a); err != nil {
		return nil, err
	}
	s.logger.Info("article replaced", zap.String("slug", a.Slug))
	return &a, nil
}

func (s *Service) Delete(ctx context.Context, slug string) error {
	if slug == "" {
		return apperr.Validation("slug", "is required")
	}
	if err := s.store.Delete(ctx, slug); err != nil {
		return err
	}
	s.logger.Info("article deleted", zap.String("slug", slug))
	return nil
}

func (s *Service) Get(ctx context.Context, slug string) (*Article, error) {
	return s.store.GetBySlug(ctx, slug)
}

// List returns every article, newest first.
func (s *Service) List(ctx context.Context) ([]Article, error) {
	items, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	SortByDate(items)
	return items, nil
}

// Latest returns summaries of the n newest articles.
func (s *Service) Latest(ctx context.Context, n int) ([]Summary, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && n < len(items) {
		items = items[:n]
	}
	return summaries(items), nil
}

// Page returns one page of article summaries, newest first.
func (s *Service) Page(ctx context.Context, q pagination.Query) ([]Summary, response.Pagination, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	page, meta := pagination.Slice(items, q)
	return summaries(page), meta, nil
}

func summaries(items []Article) []Summary {
	out := make([]Summary, len(items))
	for i := range items {
		out[i] = items[i].Summary()
	}
	return out
}

// InsertBlock inserts b at index in the body of the article.
func (s *Service) InsertBlock(ctx context.Context, slug string, index int, b block.Block) (*Article, error) {
	return s.editBlocks(ctx, slug, func(seq *block.Sequence) error {
		return seq.Insert(index, b)
	})
}

func (s *Service) UpdateBlock(ctx context.Context, slug string, index int, fields map[string]any) (*Article, error) {
	return s.editBlocks(ctx, slug, func(seq *block.Sequence) error {
		return seq.UpdateFields(index, fields)
	})
}

func (s *Service) ReplaceBlock(ctx context.Context, slug string, index int, b block.Block) (*Article, error) {
	return s.editBlocks(ctx, slug, func(seq *block.Sequence) error {
		return seq.Replace(index, b)
	})
}

func (s *Service) RemoveBlock(ctx context.Context, slug string, index int) (*Article, error) {
	return s.editBlocks(ctx, slug, func(seq *block.Sequence) error {
		return seq.Remove(index)
	})
}

func (s *Service) MoveBlock(ctx context.Context, slug string, from, to int) (*Article, error) {
	return s.editBlocks(ctx, slug, func(seq *block.Sequence) error {
		return seq.Move(from, to)
	})
}

// editBlocks loads the article, applies edit to its body and writes the
// whole document back.
func (s *Service) editBlocks(ctx context.Context, slug string, edit func(*block.Sequence) error) (*Article, error) {
	a, err := s.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	seq := a.Blocks.Clone()
	if err := edit(&seq); err != nil {
		return nil, err
	}
	a.Blocks = seq
	if err := s.store.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
