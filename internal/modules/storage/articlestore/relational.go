package articlestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nadi-health/core/internal/models"
	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Relational keeps one row per article in the articles table.
type Relational struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewRelational(db *gorm.DB, logger *zap.Logger) *Relational {
	return &Relational{db: db, logger: orNop(logger)}
}

func (r *Relational) GetAll(ctx context.Context) ([]article.Article, error) {
	var rows []models.ArticleModel
	if err := r.db.WithContext(ctx).Order("date DESC, slug ASC").Find(&rows).Error; err != nil {
		return nil, apperr.Storage("list articles", err)
	}
	out := make([]article.Article, 0, len(rows))
	for i := range rows {
		a, err := fromModel(&rows[i])
		if err != nil {
			r.logger.Warn("skip unreadable article row", zap.String("slug", rows[i].Slug), zap.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *Relational) GetBySlug(ctx context.Context, slug string) (*article.Article, error) {
	var row models.ArticleModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("article", slug)
		}
		return nil, apperr.Storage("get article", err)
	}
	a, err := fromModel(&row)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Save upserts on the slug unique index, replacing every column.
func (r *Relational) Save(ctx context.Context, a *article.Article) error {
	row, err := toModel(a)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		UpdateAll: true,
	}).Create(row).Error
	if err != nil {
		return apperr.Storage("save article", err)
	}
	return nil
}

func (r *Relational) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.ArticleModel{})
	if res.Error != nil {
		return apperr.Storage("delete article", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("article", slug)
	}
	return nil
}

func (r *Relational) Exists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ArticleModel{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, apperr.Storage("check article", err)
	}
	return count > 0, nil
}

func toModel(a *article.Article) (*models.ArticleModel, error) {
	blocks, err := json.Marshal(a.Blocks)
	if err != nil {
		return nil, fmt.Errorf("encode blocks: %w", err)
	}
	keywords := a.SEO.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return &models.ArticleModel{
		Slug:           a.Slug,
		Title:          a.Title,
		Subtitle:       a.Subtitle,
		Category:       a.Category,
		Date:           a.Date,
		ReadTime:       a.ReadTime,
		Author:         a.Author,
		CoverColor:     string(a.CoverColor),
		CoverImage:     a.CoverImage,
		SEODescription: a.SEO.Description,
		SEOKeywords:    models.StringArray(keywords),
		Blocks:         string(blocks),
	}, nil
}

func fromModel(m *models.ArticleModel) (article.Article, error) {
	blocks, err := block.ParseList([]byte(m.Blocks))
	if err != nil {
		return article.Article{}, err
	}
	keywords := []string(m.SEOKeywords)
	if keywords == nil {
		keywords = []string{}
	}
	return article.Article{
		Slug:       m.Slug,
		Title:      m.Title,
		Subtitle:   m.Subtitle,
		Category:   m.Category,
		Date:       m.Date,
		ReadTime:   m.ReadTime,
		Author:     m.Author,
		CoverColor: article.CoverColor(m.CoverColor),
		CoverImage: m.CoverImage,
		SEO:        article.SEO{Description: m.SEODescription, Keywords: keywords},
		Blocks:     blocks,
	}, nil
}
