package articlestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nadi-health/core/internal/modules/content/article"
	"go.uber.org/zap"
)

// manifestName cannot collide with an article file: slugs never start
// with an underscore.
const manifestName = "_index.json"

// ManifestEntry is one line of the generated article index.
type ManifestEntry struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

// Manifest decorates a store so that every successful write regenerates the
// index file from a full read of the store. The index is never patched.
type Manifest struct {
	article.Store
	path   string
	logger *zap.Logger
}

func WithManifest(store article.Store, path string, logger *zap.Logger) *Manifest {
	return &Manifest{Store: store, path: path, logger: orNop(logger)}
}

func (m *Manifest) Save(ctx context.Context, a *article.Article) error {
	if err := m.Store.Save(ctx, a); err != nil {
		return err
	}
	m.rebuildLogged(ctx, "save", a.Slug)
	return nil
}

func (m *Manifest) Delete(ctx context.Context, slug string) error {
	if err := m.Store.Delete(ctx, slug); err != nil {
		return err
	}
	m.rebuildLogged(ctx, "delete", slug)
	return nil
}

func (m *Manifest) rebuildLogged(ctx context.Context, op, slug string) {
	if err := m.Rebuild(ctx); err != nil {
		m.logger.Error("manifest rebuild failed",
			zap.String("op", op),
			zap.String("slug", slug),
			zap.String("path", m.path),
			zap.Error(err),
		)
	}
}

// Rebuild writes the index of every article, newest first.
func (m *Manifest) Rebuild(ctx context.Context) error {
	items, err := m.Store.GetAll(ctx)
	if err != nil {
		return err
	}
	article.SortByDate(items)

	entries := make([]ManifestEntry, len(items))
	for i, a := range items {
		entries[i] = ManifestEntry{Slug: a.Slug, Title: a.Title, Date: a.Date, Category: a.Category}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	return writeFileAtomic(m.path, append(data, '\n'))
}
