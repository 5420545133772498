package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/nadi-health/core/internal/models"
	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/modules/storage/articlestore"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTopics struct {
	items     map[string]*models.TopicModel
	published map[string]string
	added     []TopicSuggestion
}

func newFakeTopics(items ...models.TopicModel) *fakeTopics {
	f := &fakeTopics{items: map[string]*models.TopicModel{}, published: map[string]string{}}
	for i := range items {
		f.items[items[i].ID] = &items[i]
	}
	return f
}

func (f *fakeTopics) Get(_ context.Context, id string) (*models.TopicModel, error) {
	t, ok := f.items[id]
	if !ok {
		return nil, apperr.NotFound("topic", id)
	}
	return t, nil
}

func (f *fakeTopics) AddSuggestions(_ context.Context, focus string, items []TopicSuggestion) ([]models.TopicModel, error) {
	f.added = append(f.added, items...)
	out := make([]models.TopicModel, 0, len(items))
	for _, it := range items {
		out = append(out, models.TopicModel{Title: it.Title, FocusArea: focus, Status: models.TopicPending})
	}
	return out, nil
}

func (f *fakeTopics) MarkPublished(_ context.Context, id, slug string) error {
	f.published[id] = slug
	f.items[id].Status = models.TopicPublished
	return nil
}

func newTestService(t *testing.T, topics TopicStore, replies ...string) (*Service, *article.Service, *fakeGenerator) {
	t.Helper()
	store, err := articlestore.NewLocal(t.TempDir(), nil)
	require.NoError(t, err)
	articles := article.NewService(store, nil)
	bridge, gen := newTestBridge(replies...)
	return NewService(bridge, articles, topics, nil), articles, gen
}

func TestGenerateWithoutSaveDoesNotPersist(t *testing.T) {
	svc, articles, _ := newTestService(t, newFakeTopics(), generatedReply)

	a, err := svc.Generate(context.Background(), GenerateRequest{Title: "x"}, GenerateOptions{})
	require.NoError(t, err)

	_, err = articles.Get(context.Background(), a.Slug)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGenerateForTopicSavesThenPublishes(t *testing.T) {
	topics := newFakeTopics(models.TopicModel{
		Base:  models.Base{ID: "t1"},
		Title: "Health financing in Asia", Category: "POLICY BRIEF", Status: models.TopicPending,
	})
	svc, articles, gen := newTestService(t, topics, generatedReply)

	a, err := svc.Generate(context.Background(), GenerateRequest{}, GenerateOptions{TopicID: "t1", Actor: "Editor"})
	require.NoError(t, err)
	assert.Contains(t, gen.calls[0].user, "Title: Health financing in Asia")

	stored, err := articles.Get(context.Background(), a.Slug)
	require.NoError(t, err)
	assert.Equal(t, "health-financing-asia", stored.Slug)
	assert.Equal(t, "health-financing-asia", topics.published["t1"])

	_, err = svc.Generate(context.Background(), GenerateRequest{}, GenerateOptions{TopicID: "t1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGenerateFailureLeavesTopicPending(t *testing.T) {
	topics := newFakeTopics(models.TopicModel{Base: models.Base{ID: "t1"}, Title: "T", Status: models.TopicPending})
	svc, _, gen := newTestService(t, topics)
	gen.err = errors.New("upstream down")

	_, err := svc.Generate(context.Background(), GenerateRequest{}, GenerateOptions{TopicID: "t1"})
	require.Error(t, err)
	assert.Equal(t, models.TopicPending, topics.items["t1"].Status)
	assert.Empty(t, topics.published)
}

func TestSuggestTopicsPersists(t *testing.T) {
	topics := newFakeTopics()
	svc, _, _ := newTestService(t, topics, `[{"title":"A"},{"title":"B"}]`)

	items, err := svc.SuggestTopics(context.Background(), 2, "vaccines")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Len(t, topics.added, 2)
	assert.Equal(t, "vaccines", items[0].FocusArea)
}
