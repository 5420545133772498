package topic

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/nadi-health/core/internal/models"
	"github.com/nadi-health/core/internal/modules/processing/ai"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "topics.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TopicModel{}))
	return db
}

func seedTopics(t *testing.T, svc *Service, titles ...string) []models.TopicModel {
	t.Helper()
	items := make([]ai.TopicSuggestion, 0, len(titles))
	for _, title := range titles {
		items = append(items, ai.TopicSuggestion{Title: title, Category: "POLICY BRIEF", Description: title + " brief"})
	}
	topics, err := svc.AddSuggestions(context.Background(), "financing", items)
	require.NoError(t, err)
	require.Len(t, topics, len(titles))
	return topics
}

func TestAddSuggestions(t *testing.T) {
	svc := NewService(newTestDB(t), nil)

	topics, err := svc.AddSuggestions(context.Background(), " vaccines ", []ai.TopicSuggestion{
		{Title: " Vaccine pricing ", Category: "RESEARCH NOTE", Description: "d"},
		{Title: "   "},
	})
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.NotEmpty(t, topics[0].ID)
	assert.Equal(t, "Vaccine pricing", topics[0].Title)
	assert.Equal(t, "vaccines", topics[0].FocusArea)
	assert.Equal(t, models.TopicPending, topics[0].Status)
	assert.Nil(t, topics[0].ArticleSlug)
}

func TestListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestDB(t), nil)
	topics := seedTopics(t, svc, "A", "B", "C")

	require.NoError(t, svc.MarkPublished(ctx, topics[1].ID, "b"))

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := svc.List(ctx, models.TopicPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	published, err := svc.List(ctx, models.TopicPublished)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "B", published[0].Title)
	require.NotNil(t, published[0].ArticleSlug)
	assert.Equal(t, "b", *published[0].ArticleSlug)
	assert.NotNil(t, published[0].PublishedAt)
}

func TestMarkPublishedOnce(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestDB(t), nil)
	topics := seedTopics(t, svc, "A")

	require.NoError(t, svc.MarkPublished(ctx, topics[0].ID, "a"))

	err := svc.MarkPublished(ctx, topics[0].ID, "a-2")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	got, err := svc.Get(ctx, topics[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "a", *got.ArticleSlug)

	assert.ErrorIs(t, svc.MarkPublished(ctx, "missing", "x"), apperr.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestDB(t), nil)
	topics := seedTopics(t, svc, "A")

	require.NoError(t, svc.Delete(ctx, topics[0].ID))
	assert.ErrorIs(t, svc.Delete(ctx, topics[0].ID), apperr.ErrNotFound)
	_, err := svc.Get(ctx, topics[0].ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
