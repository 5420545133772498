package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"go.uber.org/zap"
)

// GenerateRequest describes the article to write.
type GenerateRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// TopicSuggestion is one proposed article subject.
type TopicSuggestion struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Bridge turns model replies into validated articles and blocks.
type Bridge struct {
	gen    Generator
	logger *zap.Logger
	now    func() time.Time
}

func NewBridge(gen Generator, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{gen: gen, logger: logger, now: time.Now}
}

type generatedArticle struct {
	Title      string          `json:"title"`
	Subtitle   string          `json:"subtitle"`
	Category   string          `json:"category"`
	ReadTime   string          `json:"readTime"`
	Author     string          `json:"author"`
	CoverColor string          `json:"coverColor"`
	SEO        article.SEO     `json:"seo"`
	Blocks     json.RawMessage `json:"blocks"`
}

// GenerateArticle writes a complete article. The slug comes from the
// generated title and the date is today; the cover image is left empty.
func (b *Bridge) GenerateArticle(ctx context.Context, req GenerateRequest) (*article.Article, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, apperr.Validation("title", "is required")
	}

	raw, err := b.gen.Complete(ctx, articleSystemPrompt, buildArticlePrompt(req), temperatureArticle)
	if err != nil {
		return nil, err
	}

	var out generatedArticle
	if err := decodeJSON(raw, &out); err != nil {
		b.logger.Warn("generated article is not JSON", zap.String("title", req.Title), zap.Error(err))
		return nil, err
	}
	if strings.TrimSpace(out.Title) == "" {
		return nil, &apperr.GenerationFormatError{Reason: "generated article has no title"}
	}
	blocks, err := block.ParseList(out.Blocks)
	if err != nil {
		return nil, err
	}

	a := &article.Article{
		Slug:       article.Slugify(out.Title),
		Title:      strings.TrimSpace(out.Title),
		Subtitle:   out.Subtitle,
		Category:   out.Category,
		ReadTime:   out.ReadTime,
		Author:     out.Author,
		CoverColor: article.CoverColor(strings.ToLower(strings.TrimSpace(out.CoverColor))),
		SEO:        out.SEO,
		Blocks:     blocks,
	}
	if a.Category == "" {
		a.Category = req.Category
	}
	if !a.CoverColor.Valid() {
		a.CoverColor = ""
	}
	article.ApplyDefaults(a, "", b.now())
	if err := article.Validate(a); err != nil {
		return nil, err
	}
	return a, nil
}

// FormatText lays out existing prose as blocks without rewriting it.
func (b *Bridge) FormatText(ctx context.Context, content string) (block.Sequence, error) {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < minFormatLength {
		return nil, apperr.Validation("content", "must be at least 50 characters")
	}

	raw, err := b.gen.Complete(ctx, formatSystemPrompt, buildFormatPrompt(content), temperatureFormat)
	if err != nil {
		return nil, err
	}
	payload, err := extractArray(raw)
	if err != nil {
		return nil, err
	}
	blocks, err := block.ParseList([]byte(payload))
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, &apperr.GenerationFormatError{Reason: "model returned no blocks"}
	}
	return blocks, nil
}

// SuggestTopics proposes count subjects, optionally around focus.
func (b *Bridge) SuggestTopics(ctx context.Context, count int, focus string) ([]TopicSuggestion, error) {
	if count <= 0 {
		count = defaultTopicCount
	}
	if count > maxTopicCount {
		count = maxTopicCount
	}
	focus = strings.TrimSpace(focus)

	raw, err := b.gen.Complete(ctx, topicsSystemPrompt, buildTopicsPrompt(count, focus), temperatureTopics)
	if err != nil {
		return nil, err
	}

	var items []TopicSuggestion
	if err := decodeJSON(raw, &items); err != nil {
		var wrapped struct {
			Topics []TopicSuggestion `json:"topics"`
		}
		if decodeJSON(raw, &wrapped) != nil || len(wrapped.Topics) == 0 {
			return nil, err
		}
		items = wrapped.Topics
	}

	out := make([]TopicSuggestion, 0, len(items))
	for _, item := range items {
		item.Title = strings.TrimSpace(item.Title)
		if item.Title == "" {
			continue
		}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil, &apperr.GenerationFormatError{Reason: "model returned no topics"}
	}
	return out, nil
}

// SuggestSEO drafts the meta description and keywords for an article.
func (b *Bridge) SuggestSEO(ctx context.Context, title, category, content string) (*article.SEO, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("title", "is required")
	}
	if strings.TrimSpace(category) == "" {
		category = seoDefaultCategory
	}
	if strings.TrimSpace(content) == "" {
		content = title
	}

	raw, err := b.gen.Complete(ctx, seoSystemPrompt, buildSEOPrompt(title, category, truncateText(content, seoExcerptLength)), temperatureSEO)
	if err != nil {
		return nil, err
	}

	var seo article.SEO
	if err := decodeJSON(raw, &seo); err != nil {
		return nil, err
	}
	if strings.TrimSpace(seo.Description) == "" {
		return nil, &apperr.GenerationFormatError{Reason: "SEO description is empty"}
	}
	if seo.Keywords == nil {
		seo.Keywords = []string{}
	}
	return &seo, nil
}
