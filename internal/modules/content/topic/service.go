// Package topic stores suggested article subjects and drives batch
// generation over them.
package topic

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nadi-health/core/internal/models"
	"github.com/nadi-health/core/internal/modules/processing/ai"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger, now: time.Now}
}

// List returns topics newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status models.TopicStatus) ([]models.TopicModel, error) {
	tx := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	topics := []models.TopicModel{}
	if err := tx.Find(&topics).Error; err != nil {
		return nil, apperr.Storage("list topics", err)
	}
	return topics, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.TopicModel, error) {
	var t models.TopicModel
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("topic", id)
		}
		return nil, apperr.Storage("get topic", err)
	}
	return &t, nil
}

// AddSuggestions stores generated topics as pending in one transaction.
func (s *Service) AddSuggestions(ctx context.Context, focus string, items []ai.TopicSuggestion) ([]models.TopicModel, error) {
	topics := make([]models.TopicModel, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		topics = append(topics, models.TopicModel{
			Title:       title,
			Description: strings.TrimSpace(item.Description),
			Category:    strings.TrimSpace(item.Category),
			FocusArea:   strings.TrimSpace(focus),
			Status:      models.TopicPending,
		})
	}
	if len(topics) == 0 {
		return topics, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&topics).Error
	})
	if err != nil {
		return nil, apperr.Storage("save topics", err)
	}
	return topics, nil
}

// MarkPublished moves a pending topic to published and records the slug of
// its article. A topic is published at most once.
func (s *Service) MarkPublished(ctx context.Context, id, slug string) error {
	now := s.now()
	result := s.db.WithContext(ctx).Model(&models.TopicModel{}).
		Where("id = ? AND status = ?", id, models.TopicPending).
		Updates(map[string]interface{}{
			"status":       models.TopicPublished,
			"article_slug": slug,
			"published_at": now,
		})
	if result.Error != nil {
		return apperr.Storage("publish topic", result.Error)
	}
	if result.RowsAffected == 1 {
		s.logger.Info("topic published", zap.String("topic", id), zap.String("slug", slug))
		return nil
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return apperr.Validation("status", "topic is already published")
}

func (s *Service) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.TopicModel{}, "id = ?", id)
	if result.Error != nil {
		return apperr.Storage("delete topic", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("topic", id)
	}
	return nil
}
