package ai

import (
	"context"

	"github.com/nadi-health/core/internal/models"
	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"go.uber.org/zap"
)

// TopicStore persists suggested topics and their publication state.
type TopicStore interface {
	Get(ctx context.Context, id string) (*models.TopicModel, error)
	AddSuggestions(ctx context.Context, focus string, items []TopicSuggestion) ([]models.TopicModel, error)
	MarkPublished(ctx context.Context, id, slug string) error
}

// GenerateOptions controls what happens to a generated article.
type GenerateOptions struct {
	// TopicID marks the topic published once the article is saved. It
	// implies Save.
	TopicID string
	Save    bool
	Actor   string
}

// Service combines the bridge with article and topic persistence.
type Service struct {
	bridge   *Bridge
	articles *article.Service
	topics   TopicStore
	logger   *zap.Logger
}

func NewService(bridge *Bridge, articles *article.Service, topics TopicStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{bridge: bridge, articles: articles, topics: topics, logger: logger}
}

func (s *Service) Bridge() *Bridge { return s.bridge }

// Generate writes an article and optionally saves it. A topic is only
// marked published after the article has been stored.
func (s *Service) Generate(ctx context.Context, req GenerateRequest, opts GenerateOptions) (*article.Article, error) {
	if opts.TopicID != "" {
		t, err := s.topics.Get(ctx, opts.TopicID)
		if err != nil {
			return nil, err
		}
		if t.Status == models.TopicPublished {
			return nil, apperr.Validation("topicId", "topic is already published")
		}
		if req.Title == "" {
			req = GenerateRequest{Title: t.Title, Category: t.Category, Description: t.Description}
		}
	}

	a, err := s.bridge.GenerateArticle(ctx, req)
	if err != nil {
		return nil, err
	}
	if !opts.Save && opts.TopicID == "" {
		return a, nil
	}

	saved, err := s.articles.Create(ctx, *a, opts.Actor)
	if err != nil {
		return nil, err
	}
	if opts.TopicID != "" {
		if err := s.topics.MarkPublished(ctx, opts.TopicID, saved.Slug); err != nil {
			s.logger.Error("mark topic published failed",
				zap.String("topic", opts.TopicID), zap.String("slug", saved.Slug), zap.Error(err))
			return saved, err
		}
	}
	return saved, nil
}

// SuggestTopics asks for topics and stores them as pending.
func (s *Service) SuggestTopics(ctx context.Context, count int, focus string) ([]models.TopicModel, error) {
	items, err := s.bridge.SuggestTopics(ctx, count, focus)
	if err != nil {
		return nil, err
	}
	return s.topics.AddSuggestions(ctx, focus, items)
}
