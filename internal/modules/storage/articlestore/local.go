package articlestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"go.uber.org/zap"
)

// Local keeps one pretty-printed JSON file per article under dir.
type Local struct {
	dir    string
	logger *zap.Logger
}

func NewLocal(dir string, logger *zap.Logger) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("articles dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Storage("create articles dir", err)
	}
	return &Local{dir: dir, logger: orNop(logger)}, nil
}

func (l *Local) path(slug string) string {
	return filepath.Join(l.dir, slug+".json")
}

func (l *Local) GetAll(ctx context.Context) ([]article.Article, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, apperr.Storage("list articles", err)
	}
	out := make([]article.Article, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !isArticleFile(name) {
			continue
		}
		a, err := l.read(filepath.Join(l.dir, name), strings.TrimSuffix(name, ".json"))
		if err != nil {
			l.logger.Warn("skip unreadable article file", zap.String("file", name), zap.Error(err))
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (l *Local) GetBySlug(_ context.Context, slug string) (*article.Article, error) {
	if !article.ValidSlug(slug) {
		return nil, apperr.NotFound("article", slug)
	}
	a, err := l.read(l.path(slug), slug)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound("article", slug)
		}
		if errors.Is(err, apperr.ErrSchemaViolation) {
			return nil, err
		}
		return nil, apperr.Storage("read article", err)
	}
	return a, nil
}

func (l *Local) read(path, slug string) (*article.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeArticle(data, slug)
}

func (l *Local) Save(_ context.Context, a *article.Article) error {
	if !article.ValidSlug(a.Slug) {
		return apperr.Validation("slug", "is not a valid slug")
	}
	data, err := encodeArticle(a)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(l.path(a.Slug), data); err != nil {
		return apperr.Storage("write article", err)
	}
	return nil
}

func (l *Local) Delete(_ context.Context, slug string) error {
	if !article.ValidSlug(slug) {
		return apperr.NotFound("article", slug)
	}
	if err := os.Remove(l.path(slug)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound("article", slug)
		}
		return apperr.Storage("delete article", err)
	}
	return nil
}

func (l *Local) Exists(_ context.Context, slug string) (bool, error) {
	if !article.ValidSlug(slug) {
		return false, nil
	}
	_, err := os.Stat(l.path(slug))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, apperr.Storage("check article", err)
	}
}

// isArticleFile accepts only {slug}.json, which leaves out the manifest,
// dotfiles and editor leftovers.
func isArticleFile(name string) bool {
	stem, ok := strings.CutSuffix(name, ".json")
	return ok && article.ValidSlug(stem)
}

// encodeArticle is the on-disk and in-bucket form: indented JSON with a
// trailing newline.
func encodeArticle(a *article.Article) ([]byte, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode article %q: %w", a.Slug, err)
	}
	return append(data, '\n'), nil
}

// decodeArticle parses a stored document. A document without a slug takes
// the one implied by its file or object name.
func decodeArticle(data []byte, slug string) (*article.Article, error) {
	var a article.Article
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	if a.Slug == "" {
		a.Slug = slug
	}
	if a.SEO.Keywords == nil {
		a.SEO.Keywords = []string{}
	}
	if a.Blocks == nil {
		a.Blocks = block.Sequence{}
	}
	return &a, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
