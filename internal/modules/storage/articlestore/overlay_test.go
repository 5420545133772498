package articlestore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestOverlayPrimaryWins(t *testing.T) {
	ctx := context.Background()
	primary, seed := newLocal(t), newLocal(t)

	seedOnly := sample("seed-only", "2024-01-01")
	shadowed := sample("shared", "2024-01-01")
	shadowed.Title = "seed copy"
	require.NoError(t, seed.Save(ctx, seedOnly))
	require.NoError(t, seed.Save(ctx, shadowed))

	override := sample("shared", "2025-01-01")
	override.Title = "primary copy"
	require.NoError(t, primary.Save(ctx, override))

	o := NewOverlay(primary, seed)

	all, err := o.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	titles := map[string]string{}
	for _, a := range all {
		titles[a.Slug] = a.Title
	}
	assert.Equal(t, "primary copy", titles["shared"])

	got, err := o.GetBySlug(ctx, "seed-only")
	require.NoError(t, err)
	assert.Equal(t, seedOnly.Title, got.Title)

	ok, err := o.Exists(ctx, "seed-only")
	require.NoError(t, err)
	assert.True(t, ok)

}

func TestOverlayDeleteKeepsExistsConsistent(t *testing.T) {
	ctx := context.Background()
	primary, seed := newLocal(t), newLocal(t)
	require.NoError(t, seed.Save(ctx, sample("seed-only", "2024-01-01")))
	require.NoError(t, seed.Save(ctx, sample("shared", "2024-01-01")))
	require.NoError(t, primary.Save(ctx, sample("shared", "2025-01-01")))
	require.NoError(t, primary.Save(ctx, sample("own", "2025-01-01")))

	o := NewOverlay(primary, seed)

	for _, slug := range []string{"seed-only", "shared"} {
		err := o.Delete(ctx, slug)
		assert.ErrorIs(t, err, apperr.ErrValidation, slug)

		ok, err := o.Exists(ctx, slug)
		require.NoError(t, err)
		assert.True(t, ok, "%s must still exist after a refused delete", slug)
	}

	got, err := o.GetBySlug(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", got.Date, "override stays in place")

	require.NoError(t, o.Delete(ctx, "own"))
	ok, err := o.Exists(ctx, "own")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, o.Delete(ctx, "missing"), apperr.ErrNotFound)
}

type failingStore struct{ article.Store }

func (failingStore) GetAll(context.Context) ([]article.Article, error) {
	return nil, apperr.Storage("list articles", errors.New("down"))
}

func TestManifestRebuildsFromStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), manifestName)
	m := WithManifest(newLocal(t), path, nil)

	require.NoError(t, m.Save(ctx, sample("older", "2024-01-01")))
	require.NoError(t, m.Save(ctx, sample("newer", "2025-01-01")))

	var entries []ManifestEntry
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "newer", entries[0].Slug)

	require.NoError(t, m.Delete(ctx, "newer"))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Equal(t, []ManifestEntry{{Slug: "older", Title: "Title older", Date: "2024-01-01", Category: "ANALYSIS"}}, entries)
}

func TestManifestFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	inner := newLocal(t)
	m := WithManifest(failingStore{Store: inner}, filepath.Join(t.TempDir(), manifestName), nil)

	require.NoError(t, m.Save(ctx, sample("kept", "2025-01-01")))
	ok, err := inner.Exists(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, ok)
}
